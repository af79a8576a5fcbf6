package storefront

import "context"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates against the backend. On success the session cookie is
// stored in the client's jar and sent with every subsequent request.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.post(ctx, "/login", loginRequest{Username: username, Password: password}, nil)
}

// Logout drops the server-side session. The jar keeps whatever expired
// cookie the backend sends back; callers should treat the client as
// anonymous afterwards.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/logout", nil, nil)
}

// Me returns the current session identity. An unauthenticated session is not
// an error: the backend reports the ANONYMOUS role.
func (c *Client) Me(ctx context.Context) (Viewer, error) {
	var v Viewer
	if err := c.get(ctx, "/auth/me", &v); err != nil {
		return Viewer{}, err
	}
	if v.Role == "" {
		v.Role = RoleAnonymous
	}
	return v, nil
}
