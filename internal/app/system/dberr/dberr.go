// Package dberr classifies MongoDB driver errors into the small set of
// failures the bootstrapper reports.
//
// Classified errors wrap both the sentinel and the original driver error,
// so callers can match with errors.Is on either.
package dberr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

var (
	// ErrDuplicatePrincipal is returned when createUser finds the user already present.
	ErrDuplicatePrincipal = errors.New("principal already exists")
	// ErrCollectionExists is returned when the collection is already present.
	ErrCollectionExists = errors.New("collection already exists")
	// ErrPermissionDenied is returned when the session lacks the needed privilege
	// or cannot authenticate.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConnection is returned when the instance cannot be reached.
	ErrConnection = errors.New("database unreachable")
	// ErrInvalidInput is returned for names rejected before any round-trip.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownRole is returned when the role is not recognized by the server.
	ErrUnknownRole = errors.New("unknown role")
	// ErrNotFound is returned by lookups that match nothing.
	ErrNotFound = errors.New("not found")
)

// Server error codes.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
	codeNamespaceExists      = 48
	codeRoleNotFound         = 31
	codeDuplicateKey         = 11000
	codeUserAlreadyExists    = 51003
)

// classified carries a sentinel kind alongside the driver error.
type classified struct {
	kind error
	err  error
}

func (c *classified) Error() string   { return fmt.Sprintf("%v: %v", c.kind, c.err) }
func (c *classified) Unwrap() []error { return []error{c.kind, c.err} }

func wrap(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return &classified{kind: kind, err: err}
}

// Kind returns the sentinel that err was classified as, or nil.
func Kind(err error) error {
	for _, k := range []error{
		ErrDuplicatePrincipal,
		ErrCollectionExists,
		ErrPermissionDenied,
		ErrConnection,
		ErrInvalidInput,
		ErrUnknownRole,
		ErrNotFound,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Classify maps connection and authorization failures common to every
// command. Errors it does not recognize are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		return err
	}
	// Handshake auth failures can surface inside connection errors.
	if IsPermissionErr(err) {
		return wrap(ErrPermissionDenied, err)
	}
	if IsConnectionErr(err) {
		return wrap(ErrConnection, err)
	}
	return err
}

// ClassifyCreateUser classifies an error returned by createUser.
func ClassifyCreateUser(err error) error {
	if err == nil {
		return nil
	}
	if IsUserExistsErr(err) {
		return wrap(ErrDuplicatePrincipal, err)
	}
	if hasCode(err, codeRoleNotFound) {
		return wrap(ErrUnknownRole, err)
	}
	return Classify(err)
}

// ClassifyCreateCollection classifies an error returned by createCollection.
func ClassifyCreateCollection(err error) error {
	if err == nil {
		return nil
	}
	if IsNamespaceExistsErr(err) {
		return wrap(ErrCollectionExists, err)
	}
	return Classify(err)
}

// IsUserExistsErr reports whether createUser rejected a duplicate user.
// Older servers surface it as a duplicate key on admin.system.users.
func IsUserExistsErr(err error) bool {
	if err == nil {
		return false
	}
	if hasCode(err, codeUserAlreadyExists, codeDuplicateKey) || wafflemongo.IsDup(err) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "user") && strings.Contains(s, "already exists")
}

// IsNamespaceExistsErr reports whether createCollection hit an existing namespace.
func IsNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == codeNamespaceExists || ce.Name == "NamespaceExists") {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "namespaceexists") || strings.Contains(s, "collection already exists")
}

// IsPermissionErr reports authorization and authentication failures.
func IsPermissionErr(err error) bool {
	if err == nil {
		return false
	}
	if hasCode(err, codeUnauthorized, codeAuthenticationFailed) {
		return true
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Name == "Unauthorized" || ce.Name == "AuthenticationFailed") {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not authorized") ||
		strings.Contains(s, "requires authentication") ||
		strings.Contains(s, "authentication failed") ||
		strings.Contains(s, "auth error")
}

// IsConnectionErr reports network, server-selection and timeout failures.
func IsConnectionErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var sse topology.ServerSelectionError
	if errors.As(err, &sse) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "server selection error") || strings.Contains(s, "connection refused")
}

func hasCode(err error, codes ...int32) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		for _, c := range codes {
			if se.HasErrorCode(int(c)) {
				return true
			}
		}
	}
	return false
}
