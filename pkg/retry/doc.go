// Package retry protects outbound calls against transient failures and rate limits.
//
// Key Features:
//
// 1. Immutable policies:
//   - Policy: retries, base delay, max delay, multiplier, jitter fraction
//   - Presets: DefaultPolicy, AIServicePolicy, SourceControlPolicy, NetworkPolicy
//   - Scoped presets with a fallback default (PresetsBuilder)
//
// 2. Failure classification:
//   - Retryable: network, timeout, 5xx and busy signals
//   - RateLimited: retried with the server's retry-after hint when present
//   - Fatal: auth failures, malformed requests, business rejections
//
// 3. Executor:
//   - Generic Execute / ExecuteNamed / Do / Wrap / ExecuteAsync
//   - Context cancellation aborts the wait immediately
//   - Event notification for logging, statistics and metrics
//
// Basic usage example:
//
//	executor := retry.NewExecutor(
//		retry.WithEventHandler(retry.NewLogEventHandler(logger)))
//
//	issue, err := retry.ExecuteNamed(ctx, executor, "create-issue", retry.SourceControlPolicy(),
//		func(ctx context.Context) (*Issue, error) {
//			return client.CreateIssue(ctx, req)
//		})
//
// Scoped presets:
//
//	presets, err := retry.NewPresetsBuilder().
//		WithDefault(retry.NetworkPolicy()).
//		WithScope("github", retry.SourceControlPolicy()).
//		Build()
//
//	err = retry.Do(ctx, executor, presets.For("github"), pushBranch)
//
// Custom classification:
//
//	classifier := retry.NewClassifier(
//		retry.WithRetryableMarkers("500"),
//		retry.WithRetryableErrors(io.ErrUnexpectedEOF))
//	executor := retry.NewExecutor(retry.WithClassifier(classifier))
//
// Error handling:
//
// When retries are exhausted the error of the final attempt is returned as is, so
// callers can still inspect it with errors.As, including a *types.CallError and its
// RetryAfter hint. Fatal errors are returned unchanged after the first attempt.
//
// Thread safety:
//
// Policy, Presets and Executor are immutable after construction. Concurrent Execute
// calls share nothing; there is no global limiter across calls.
package retry
