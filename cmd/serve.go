package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/pipeline"
	"github.com/vidlink-cli/vidlink/provider"
	"github.com/vidlink-cli/vidlink/server"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "Address to listen on")
	lo.Must0(viper.BindPFlag(key.ServerAddress, serveCmd.Flags().Lookup("address")))

	serveCmd.Flags().Float64("rate-limit", 0, "Requests per second allowed per client, 0 disables limiting")
	lo.Must0(viper.BindPFlag(key.ServerRateLimit, serveCmd.Flags().Lookup("rate-limit")))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyze and download API over HTTP",
	Long: `Start an HTTP server exposing:

  POST /api/analyze   {"url": "...", "query": "..."}
  POST /api/download  {"url": "...", "query": "...", "format": "mp4", "quality": "auto"}

Every request builds its own providers; nothing is shared between requests.`,
	Run: func(cmd *cobra.Command, args []string) {
		names := viper.GetStringSlice(key.DefaultSources)

		// fail fast on unknown provider names
		_, err := provider.Ordered(names)
		handleErr(err)

		s := server.New(func() (*pipeline.Pipeline, func(), error) {
			return provider.NewPipeline(names)
		}, server.Options{
			RateLimit: viper.GetFloat64(key.ServerRateLimit),
			Burst:     viper.GetInt(key.ServerBurst),
			LogLevel:  viper.GetString(key.LogsLevel),
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = s.Shutdown(shutdown)
		}()

		if err := s.Start(viper.GetString(key.ServerAddress)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr(err)
		}
	},
}
