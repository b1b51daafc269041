// Package nav gates every view transition behind a freshly resolved
// authorization profile.
package nav

// Route is the static metadata for one navigation target.
type Route struct {
	Path        string
	Title       string
	Permissions []string // function codes required to use the view
	Public      bool     // reachable without a credential
	Redirect    string   // non-empty: alias resolved before evaluation
}

// table mirrors the application's view tree. Only the login page is public.
var table = []Route{
	{Path: "/login", Title: "Login", Public: true},
	{Path: "/", Redirect: "/dashboard"},
	{Path: "/dashboard", Title: "Dashboard"},
	{Path: "/system/user", Title: "User Management", Permissions: []string{"USER_VIEW"}},
	{Path: "/system/role", Title: "Role Management", Permissions: []string{"ROLE_VIEW"}},
	{Path: "/system/function", Title: "Function Management", Permissions: []string{"FUNCTION_VIEW"}},
	{Path: "/refund/standard", Title: "Refund Standard (BOM)", Permissions: []string{"BOM_VIEW"}},
	{Path: "/refund/import", Title: "Import Declarations", Permissions: []string{"IMPORT_DECLARATION_VIEW"}},
	{Path: "/refund/export", Title: "Export Declarations", Permissions: []string{"EXPORT_DECLARATION_VIEW"}},
	{Path: "/refund/list", Title: "Tax Refund List", Permissions: []string{"TAX_REFUND_VIEW"}},
	{Path: "/404", Title: "Not Found"},
}

// Routes returns a copy of the route table.
func Routes() []Route {
	out := make([]Route, len(table))
	copy(out, table)
	return out
}

// Resolve maps a requested path to its route, following aliases. Unknown
// paths resolve to the /404 route, matching the router's catch-all.
func Resolve(path string) Route {
	for hops := 0; hops <= len(table); hops++ {
		r, ok := lookup(path)
		if !ok {
			break
		}
		if r.Redirect == "" {
			return r
		}
		path = r.Redirect
	}
	notFound, _ := lookup("/404")
	return notFound
}

func lookup(path string) (Route, bool) {
	for _, r := range table {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// CanAccess reports whether the given authority set satisfies the route's
// permission tags. Routes without tags are open to any authenticated user.
func CanAccess(roles []string, r Route) bool {
	if len(r.Permissions) == 0 {
		return true
	}
	held := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		held[role] = struct{}{}
	}
	for _, p := range r.Permissions {
		if _, ok := held[p]; !ok {
			return false
		}
	}
	return true
}
