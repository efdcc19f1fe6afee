// Package wink provides a Go client library for the Wink home-automation API.
//
// Every operation is a single HTTP request against https://winkapi.quirky.com
// whose JSON response is wrapped in an envelope with a "data" member and an
// optional "errors" array.
//
// # Authentication
//
// The API uses OAuth2 password and refresh-token grants:
//
//	client, err := wink.NewClient(wink.Credentials{
//	    ClientID:     "your-client-id",
//	    ClientSecret: "your-client-secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Login(ctx, "user@example.com", "passphrase"); err != nil {
//	    log.Fatal(err)
//	}
//
// Tokens are never refreshed automatically. Call Refresh when the API starts
// answering 401:
//
//	if wink.IsUnauthorized(err) {
//	    err = client.Refresh(ctx)
//	}
//
// # Devices
//
// Device records are classified by their first member ending in "_id":
//
//	devices, err := client.GetDevices(ctx)
//	for _, d := range devices {
//	    fmt.Printf("%s %s at %s\n", d.Type, d.Name, d.Path)
//	}
//
//	fresh, err := client.GetDevice(ctx, &devices[0])
//	_, err = client.SetDevice(ctx, fresh, map[string]any{
//	    "desired_state": map[string]any{"powered": true},
//	})
//
// # Raw requests
//
// Invoke and Roundtrip reach any path. Invoke validates the status code and
// JSON syntax; Roundtrip also unwraps the envelope:
//
//	data, err := client.Roundtrip(ctx, http.MethodGet, "/users/me/robots", nil)
//
// Asynchronous variants call a completion function exactly once from their own
// goroutine. Fire sends a request whose outcome is only logged:
//
//	<-client.Fire(ctx, http.MethodPut, device.Path, props)
//
// # Error Handling
//
// Failures are typed: *TransportError, *ParseError, *HTTPStatusError and
// *EnvelopeError. Use the predicates:
//
//	switch {
//	case wink.IsInvalidCredentials(err):
//	    // bad username/passphrase or client credentials
//	case wink.IsHTTPStatus(err):
//	    // unexpected status code
//	case wink.IsEnvelope(err):
//	    // the API reported errors or returned no data
//	}
//
// ServiceError maps any of them to a go-errors service error.
//
// # Logging and metrics
//
// Log entries go to a five-level Logger; the default writes to the logrus
// standard logger. WithMetrics registers request counters and latency
// histograms with a prometheus registry.
package wink
