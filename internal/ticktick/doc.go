// Package ticktick provides a resilient client for the TickTick Open API.
//
// Every request goes through a single executor which owns the failure
// handling for one logical call:
//   - a 401 response triggers at most one OAuth2 refresh-token exchange,
//     after which the request is replayed with the new bearer token
//   - a 429 response is retried with exponential backoff
//     (RateLimitDelay, 2x, 4x, ...) up to MaxRetries times
//   - any other 4xx/5xx response, transport failure or undecodable body
//     ends the call with a typed *Error
//
// The typed methods (projects, tasks, subtasks, filtered queries and batch
// creation) are thin wrappers over Execute that encode and decode the
// TickTick JSON records.
//
// # Authentication
//
// The client is handed an access token and, optionally, a refresh token with
// the OAuth client credentials. It never persists tokens itself; callers that
// want refreshed tokens to survive the process register a token observer
// with WithTokenObserver.
//
// # Example Usage
//
//	client, err := ticktick.NewClient(ticktick.Config{
//	    AccessToken:  os.Getenv("TICKTICK_ACCESS_TOKEN"),
//	    RefreshToken: os.Getenv("TICKTICK_REFRESH_TOKEN"),
//	    ClientID:     os.Getenv("TICKTICK_CLIENT_ID"),
//	    ClientSecret: os.Getenv("TICKTICK_CLIENT_SECRET"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	projects, err := client.ListProjects(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Everything due today or overdue, across open projects
//	results, err := client.QueryTasks(ctx, ticktick.Overdue())
package ticktick
