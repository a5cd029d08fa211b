// Package policy is the single source of truth for role-based authorization.
// Services consult Allowed for every gated operation; no role comparison
// happens anywhere else.
package policy

import "github.com/bloodlink/bloodlink-api/internal/domain/entity"

// Action enumerates everything a caller can be allowed or denied.
type Action string

const (
	ActionCreateRequest  Action = "request:create"
	ActionClaimRequest   Action = "request:claim"
	ActionAdvanceRequest Action = "request:advance" // inprogress -> done/canceled
	ActionCancelPending  Action = "request:cancel-pending"
	ActionEditRequest    Action = "request:edit"
	ActionDeleteRequest  Action = "request:delete"

	ActionManageUsers Action = "users:manage" // role/status changes, listing

	ActionWriteBlog   Action = "blog:write"   // create/edit drafts
	ActionPublishBlog Action = "blog:publish" // publish/unpublish
	ActionDeleteBlog  Action = "blog:delete"
)

// RequestContext carries the per-resource facts the matrix needs: who created
// the request and who (if anyone) claimed it. Nil when the action is not
// about a particular request.
type RequestContext struct {
	RequesterEmail string
	DonorEmail     string
}

// Allowed evaluates the role matrix for the acting identity.
//
//	action                  donor            volunteer  admin
//	create request          yes (if active)  yes        yes
//	claim pending           yes (if active)  yes        yes
//	advance inprogress      assigned only    yes        yes
//	cancel pending          requester only   no         yes
//	edit request            requester only   no         yes
//	delete request          requester only   no         yes
//	manage users            no               no         yes
//	write blog              no               yes        yes
//	publish/delete blog     no               no         yes
func Allowed(actor entity.Identity, action Action, req *RequestContext) bool {
	switch action {
	case ActionCreateRequest:
		return !actor.Blocked()

	case ActionClaimRequest:
		return !actor.Blocked()

	case ActionAdvanceRequest:
		if actor.Role == entity.RoleVolunteer || actor.Role == entity.RoleAdmin {
			return true
		}
		return req != nil && req.DonorEmail != "" && req.DonorEmail == actor.Email

	case ActionCancelPending, ActionEditRequest, ActionDeleteRequest:
		if actor.Role == entity.RoleAdmin {
			return true
		}
		return req != nil && req.RequesterEmail == actor.Email

	case ActionManageUsers:
		return actor.Role == entity.RoleAdmin

	case ActionWriteBlog:
		return actor.Role == entity.RoleVolunteer || actor.Role == entity.RoleAdmin

	case ActionPublishBlog, ActionDeleteBlog:
		return actor.Role == entity.RoleAdmin
	}
	return false
}
