package sessionkit

// RouteTarget is a destination route for the dashboard shell.
type RouteTarget string

const (
	// RoutePending means auth state is still loading or restoring; the
	// shell should hold rather than flash-redirect to the login page.
	RoutePending RouteTarget = "pending"

	RouteLogin                   RouteTarget = "/login"
	RouteAdminDashboard          RouteTarget = "/admin-dashboard"
	RouteDepartmentHeadDashboard RouteTarget = "/department-head-dashboard"
	RouteDashboard               RouteTarget = "/dashboard"
)

// Route maps session state to a destination. It is a pure total function:
// every input, including sessions with unrecognized roles, yields exactly
// one target.
func Route(session *Session, isLoadingAuth bool) RouteTarget {
	if isLoadingAuth {
		return RoutePending
	}
	if session == nil {
		return RouteLogin
	}
	switch session.Role {
	case RoleAdmin:
		return RouteAdminDashboard
	case RoleDepartmentHead:
		return RouteDepartmentHeadDashboard
	default:
		return RouteDashboard
	}
}

// RouteSnapshot routes from a [Snapshot], the form most shell code holds.
func RouteSnapshot(snap Snapshot) RouteTarget {
	return Route(snap.Session, snap.IsLoading)
}
