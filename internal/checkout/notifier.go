package checkout

import "context"

// View is a navigation target reflected to the user at a terminal transition.
type View string

const (
	ViewOrders View = "/mypage"
	ViewLogin  View = "/login"
)

// Notifier reflects flow outcomes to the user. The flow never renders
// anything itself; it only emits messages and navigation intents.
type Notifier interface {
	Notify(ctx context.Context, message string)
	Navigate(ctx context.Context, view View)
}
