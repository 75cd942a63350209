// Package client is a Go client for the semdocs HTTP API.
//
//	c := client.New("http://localhost:8080", client.WithToken(jwt))
//	doc, _ := c.Ingest(ctx, "Go notes", "channels are typed conduits")
//	res, _ := c.Search(ctx, client.SearchRequest{Query: "concurrency", MatchCount: client.Int(5)})
//
// Failure envelopes come back as *APIError; use errors.As to inspect the code.
package client
