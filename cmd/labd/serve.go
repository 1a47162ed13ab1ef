package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"labd/internal/config"
	"labd/internal/httpapi"
	"labd/internal/pipeline"
	"labd/internal/registry"
)

// buildServeCmd exposes the configured task over HTTP.
func buildServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured task over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, log, err := commandSetup(cmd)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")
			corsOn, _ := cmd.Flags().GetBool("cors")
			trainerBin, _ := cmd.Flags().GetString("trainer-bin")
			maxBody, _ := cmd.Flags().GetInt64("max-body-bytes")
			inferTimeout, _ := cmd.Flags().GetInt64("infer-timeout")
			httpapi.SetMaxBodyBytes(maxBody)
			httpapi.SetInferTimeoutSeconds(inferTimeout)
			return serve(cmd, s, log, addr, corsOn, trainerBin)
		},
	}
	cmd.Flags().String("addr", envOr("LABD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	cmd.Flags().Bool("cors", false, "Enable permissive CORS for browser clients")
	cmd.Flags().String("trainer-bin", envOr("LABD_TRAINER_BIN", "labd-trainer"), "External trainer binary")
	cmd.Flags().Int64("max-body-bytes", 1<<20, "Maximum request body size for JSON endpoints")
	cmd.Flags().Int64("infer-timeout", 0, "Maximum /infer duration in seconds (0 disables)")
	return cmd
}

func serve(cmd *cobra.Command, s config.Settings, log zerolog.Logger, addr string, corsOn bool, trainerBin string) error {
	// Serving decodes one sample per request.
	const serveBatchSize = 1

	basePipe, baseCloser, err := newTaskPipeline(s, s.Parameters.Model, nil, serveBatchSize, log)
	if err != nil {
		return err
	}
	defer baseCloser.Close()

	var ftPipe pipeline.Pipeline
	if s.Task == "summarize" && s.SFT.FinetunedModelPath != "" {
		if artifacts, err := registry.ScanDir(filepath.Dir(s.SFT.FinetunedModelPath)); err == nil {
			for _, a := range artifacts {
				log.Debug().Str("model", a.Name).Int64("size_bytes", a.SizeBytes).Msg("persisted model found")
			}
		}
		artifact, ok, err := registry.Load(s.SFT.FinetunedModelPath)
		if err != nil {
			return err
		}
		if !ok {
			log.Info().Str("path", s.SFT.FinetunedModelPath).Msg("fine-tuned model absent, training first")
			if err := finetune(cmd, s, log, trainerBin); err != nil {
				return err
			}
			artifact, ok, err = registry.Load(s.SFT.FinetunedModelPath)
			if err != nil {
				return err
			}
		}
		if ok {
			p, closer, err := newTaskPipeline(s, artifact.Path, nil, serveBatchSize, log)
			if err != nil {
				return err
			}
			defer closer.Close()
			ftPipe = p
			log.Info().
				Str("model", artifact.Name).
				Int64("size_bytes", artifact.SizeBytes).
				Msg("fine-tuned model loaded")
		} else {
			log.Warn().Str("path", s.SFT.FinetunedModelPath).Msg("fine-tuned model still absent, serving base model only")
		}
	}

	baseCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(log)
	if corsOn {
		httpapi.SetCORSOptions(true,
			[]string{"*"},
			[]string{http.MethodGet, http.MethodPost},
			[]string{"Content-Type", "X-Log-Level"},
		)
	}

	app := httpapi.NewApp(s.Task, basePipe, ftPipe)
	srv := &http.Server{Addr: addr, Handler: httpapi.NewMux(app)}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("task", s.Task).Msg("labd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	cancel()
	ctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
