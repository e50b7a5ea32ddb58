// Package httputil provides HTTP plumbing shared by the image host client
// and the image fetcher.
//
//   - [NewClient]: an *http.Client with a standard timeout
//   - [CheckStatus]: maps response codes to errors, marking 5xx and 429 as
//     retryable
//   - [Retry]: automatic retry with exponential backoff
//
// # Retry
//
// [Retry] only repeats errors wrapped in [RetryableError], so permanent
// failures (bad credentials, 4xx) surface immediately:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp)
//	})
package httputil
