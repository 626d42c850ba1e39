// Package environment propagates the deployment environment (development,
// staging, production) through context.Context and HTTP requests.
//
//	env := environment.Parse(cfg.Env)
//	router.Use(environment.Middleware(env))
//	if environment.IsProduction(ctx) { ... }
package environment
