package users

import (
	"context"
	"net/http"

	"iotower.com/console/api"
)

// GroupsHierarchy returns the group tree visible to the signed-in user
func (c *Client) GroupsHierarchy(ctx context.Context) ([]GroupHierarchy, error) {
	return api.Fetch[[]GroupHierarchy](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   base + "/groups/hierarchy",
		Access: api.Authenticated,
	})
}

// CreateGroup creates a group
func (c *Client) CreateGroup(ctx context.Context, body GroupCreationBody) (api.ActionResult, error) {
	return c.call(ctx, api.Request{
		Method: http.MethodPost,
		Path:   base + "/groups",
		Body:   body,
		Access: api.Authenticated,
	})
}

// Walk visits g and its descendants depth first
func (g GroupHierarchy) Walk(fn func(node GroupHierarchy, depth int)) {
	g.walk(fn, 0)
}

func (g GroupHierarchy) walk(fn func(GroupHierarchy, int), depth int) {
	fn(g, depth)
	for _, child := range g.Children {
		child.walk(fn, depth+1)
	}
}
