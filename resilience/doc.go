// Package resilience bounds upstream exchanges.
//
// Timeout puts an explicit deadline on each exchange; CircuitBreaker stops
// calling an upstream that keeps failing and lets a single probe through
// after a cool-down. Executor composes the two, breaker outermost:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        MaxFailures:  5,
//	        ResetTimeout: 30 * time.Second,
//	    })),
//	    resilience.WithTimeout(10*time.Second),
//	)
//
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return fetch(ctx)
//	})
//
// Nothing here retries: a failed exchange is reported once.
package resilience
