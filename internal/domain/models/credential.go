// internal/domain/models/credential.go
package models

// Credential is an application principal stored in the instance's
// authentication namespace (admin.system.users).
//
// NOTE:
//   - (Username, AuthDatabase) is unique per instance.
//   - Password is only populated when creating; it is never read back from
//     the server and never rendered as JSON.
type Credential struct {
	Username     string        `bson:"user" json:"user"`
	Password     string        `bson:"-" json:"-"`
	AuthDatabase string        `bson:"db" json:"db"`
	Roles        []RoleBinding `bson:"roles" json:"roles"`
}

// RoleBinding grants Role on Database.
type RoleBinding struct {
	Role     string `bson:"role" json:"role"`
	Database string `bson:"db" json:"db"`
}

// HasRole reports whether the credential carries role on db.
func (c Credential) HasRole(role, db string) bool {
	for _, rb := range c.Roles {
		if rb.Role == role && rb.Database == db {
			return true
		}
	}
	return false
}
