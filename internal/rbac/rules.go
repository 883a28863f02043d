package rbac

// Default role policy. Learners act only on their own enrollments; managers
// get read access to their reports' training state; admins get everything.
var RolePermissions = map[string][]string{
	"learner": {
		"course:view",
		"video:complete",
		"quiz:attempt",
		"certificate:download",
		"attempt:view-own",
		"user:change_password",
	},
	"manager": {
		"course:view",
		"attempt:view-all",
		"users:list",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
