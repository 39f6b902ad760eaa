package rbac

// Default policy. The table is data, not code: deployments may swap it
// wholesale via NewChecker.
var RolePermissions = map[string][]string{
	"student": {
		"attendance:checkin",
		"transcript:view-own",
	},
	"teacher": {
		"session:create",
		"session:finalize",
		"session:list",
		"attendance:mark",
		"attendance:aggregate",
		"scores:edit",
		"scores:submit",
		"scores:reopen",
		"config:view",
	},
	"staff": {
		"session:list",
		"session:reopen",
		"attendance:aggregate",
		"scores:view",
		"scores:review",
		"scores:reopen",
		"config:*",
		"roster:manage",
		"users:*",
		"transcript:view-all",
	},
	"admin": {
		"*", // everything
	},
}
