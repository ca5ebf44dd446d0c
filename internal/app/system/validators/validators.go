// internal/app/system/validators/validators.go
package validators

// Name rules follow the server's own restrictions, so bad input is rejected
// before anything is written.

import (
	"fmt"
	"strings"

	"github.com/dalemusser/mongoinit/internal/app/system/dberr"
	"github.com/dalemusser/mongoinit/internal/domain/models"
)

// maxDatabaseNameBytes is the server limit on database name length.
const maxDatabaseNameBytes = 63

// DatabaseName validates a MongoDB database name.
func DatabaseName(name string) error {
	if name == "" {
		return invalid("database name must not be empty")
	}
	if len(name) > maxDatabaseNameBytes {
		return invalid("database name %q exceeds %d bytes", name, maxDatabaseNameBytes)
	}
	if i := strings.IndexAny(name, "/\\. \"$*<>:|?\x00"); i >= 0 {
		return invalid("database name %q contains invalid character %q", name, name[i])
	}
	return nil
}

// CollectionName validates a MongoDB collection name.
func CollectionName(name string) error {
	if name == "" {
		return invalid("collection name must not be empty")
	}
	if strings.ContainsAny(name, "$\x00") {
		return invalid("collection name %q must not contain '$' or NUL", name)
	}
	if strings.HasPrefix(name, "system.") {
		return invalid("collection name %q uses the reserved system. prefix", name)
	}
	return nil
}

// Principal validates a user name.
func Principal(name string) error {
	if name == "" {
		return invalid("principal name must not be empty")
	}
	if strings.TrimSpace(name) != name {
		return invalid("principal name %q has leading or trailing whitespace", name)
	}
	if strings.ContainsRune(name, 0) {
		return invalid("principal name must not contain NUL")
	}
	return nil
}

// RoleBinding validates the shape of a role binding and reports whether the
// role is a known built-in. Unknown roles are not an error here; the caller
// decides whether to look them up on the server as custom roles.
func RoleBinding(rb models.RoleBinding) (builtin bool, err error) {
	if rb.Role == "" {
		return false, invalid("role name must not be empty")
	}
	if err := DatabaseName(rb.Database); err != nil {
		return false, fmt.Errorf("role database: %w", err)
	}
	if models.IsDatabaseRole(rb.Role) {
		return true, nil
	}
	if models.IsAdminOnlyRole(rb.Role) {
		if rb.Database != "admin" {
			return false, fmt.Errorf("%w: %q can only be granted on the admin database", dberr.ErrUnknownRole, rb.Role)
		}
		return true, nil
	}
	return false, nil
}

// Credential validates everything about c except role recognition for
// non-built-in roles.
func Credential(c models.Credential) (unknownRoles []models.RoleBinding, err error) {
	if err := Principal(c.Username); err != nil {
		return nil, err
	}
	if c.Password == "" {
		return nil, invalid("secret must not be empty")
	}
	if err := DatabaseName(c.AuthDatabase); err != nil {
		return nil, fmt.Errorf("auth database: %w", err)
	}
	if len(c.Roles) == 0 {
		return nil, invalid("at least one role binding is required")
	}
	for _, rb := range c.Roles {
		builtin, err := RoleBinding(rb)
		if err != nil {
			return nil, err
		}
		if !builtin {
			unknownRoles = append(unknownRoles, rb)
		}
	}
	return unknownRoles, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{dberr.ErrInvalidInput}, args...)...)
}
