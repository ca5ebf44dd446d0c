// internal/domain/models/roles.go
package models

// Built-in roles that may be granted on any database.
var DatabaseRoles = []string{
	"read",
	"readWrite",
	"dbAdmin",
	"dbOwner",
	"userAdmin",
}

// Built-in roles that are only valid when bound to the admin database.
var AdminOnlyRoles = []string{
	"readAnyDatabase",
	"readWriteAnyDatabase",
	"userAdminAnyDatabase",
	"dbAdminAnyDatabase",
	"clusterAdmin",
	"clusterManager",
	"clusterMonitor",
	"hostManager",
	"backup",
	"restore",
	"root",
}

// IsDatabaseRole reports whether role is a built-in role usable on any database.
func IsDatabaseRole(role string) bool {
	for _, r := range DatabaseRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdminOnlyRole reports whether role is a built-in role restricted to admin.
func IsAdminOnlyRole(role string) bool {
	for _, r := range AdminOnlyRoles {
		if r == role {
			return true
		}
	}
	return false
}
