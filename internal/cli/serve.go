package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archmap/pkg/pipeline"
	"github.com/matzehuels/archmap/pkg/server"
	"github.com/matzehuels/archmap/pkg/server/prefs"
)

const defaultServeAddr = "127.0.0.1:8731"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags analyzeFlags
	var addr string
	var mongoURI string

	cmd := &cobra.Command{
		Use:   "serve [folder]",
		Short: "Analyze a project and serve it to the viewer",
		Long: `Serve runs the analysis pipeline in the background and exposes its state
and result over HTTP. The viewer shell polls /api/state while the
pipeline runs and fetches /api/snapshot once it is ready. View
preferences are persisted in memory, or in Mongo when --mongo-uri is
given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cfg, err := c.pipelineOptions(flags, args)
			if err != nil {
				return err
			}

			ctrl, err := pipeline.NewController(opts)
			if err != nil {
				return err
			}

			store, err := c.newPrefsStore(cmd.Context(), mongoURI, cfg)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			// The pipeline runs once in the background; the server reads
			// its published state.
			go func() {
				if _, err := ctrl.Run(cmd.Context()); err != nil {
					c.Logger.Error("analysis failed", "cause", err)
				}
			}()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			if addr == "" {
				addr = defaultServeAddr
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(ctrl, store, c.Logger),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			printInfo("Serving on http://%s", addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+defaultServeAddr+")")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "persist view preferences in Mongo")
	return cmd
}

// newPrefsStore selects the preferences backend: Mongo when configured,
// memory otherwise.
func (c *CLI) newPrefsStore(ctx context.Context, mongoURI string, cfg Config) (prefs.Store, error) {
	uri := mongoURI
	if uri == "" {
		uri = cfg.Mongo.URI
	}
	if uri == "" {
		return prefs.NewMemoryStore(), nil
	}
	mongoCfg := cfg.Mongo
	mongoCfg.URI = uri
	store, err := prefs.NewMongoStore(ctx, mongoCfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}
