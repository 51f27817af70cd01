package module

import "context"

// Authorizer decides whether the request behind ctx holds permission.
type Authorizer func(ctx context.Context, permission string) bool

type grantsKey struct{}

// WithGrants returns a context that holds perms in addition to any
// permissions already granted on ctx.
func WithGrants(ctx context.Context, perms ...string) context.Context {
	prev, _ := ctx.Value(grantsKey{}).(map[string]struct{})
	grants := make(map[string]struct{}, len(prev)+len(perms))
	for p := range prev {
		grants[p] = struct{}{}
	}
	for _, p := range perms {
		if p != "" {
			grants[p] = struct{}{}
		}
	}
	return context.WithValue(ctx, grantsKey{}, grants)
}

// Granted is the default Authorizer: it reports whether permission was
// attached to ctx with WithGrants.
func Granted(ctx context.Context, permission string) bool {
	grants, _ := ctx.Value(grantsKey{}).(map[string]struct{})
	_, ok := grants[permission]
	return ok
}
