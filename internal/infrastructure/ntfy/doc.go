// Package ntfy delivers push notifications through an ntfy server.
//
// Notifications are published as JSON POST requests with the topic
// embedded in the body. The house uses three kinds: presence changes
// (home/away with a "set away" override button), the washing machine
// done notice, and the daily low-battery sweep.
//
// Delivery is best-effort. Callers log failures and move on; no
// automation decision ever depends on a notification being delivered.
//
// # Usage
//
//	client, err := ntfy.NewClient(cfg.Ntfy)
//	if err != nil {
//	    return err
//	}
//
//	err = client.Send(ctx, ntfy.Notification{
//	    Title:    "Laundry",
//	    Message:  "Laundry is done",
//	    Tags:     []string{"basket"},
//	    Priority: ntfy.PriorityHigh,
//	})
package ntfy
