// Package bootstrap runs the asrgate process: typed config, ordered
// components, configure steps and graceful shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(objectStore)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    return a.RegisterComponent(server.NewComponent(srv))
//	})
//	err = app.Run(ctx)
//
// Components registered by a configure step start right after it, and
// everything stops in reverse registration order.
package bootstrap
