package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"golang.org/x/oauth2"

	"quotereel/manager-go/internal/credstore"
	"quotereel/manager-go/internal/pipeline"
	"quotereel/manager-go/internal/upload"
	"quotereel/manager-go/internal/utils"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// oauthScopes covers uploading plus the email used to key the stored bundle.
var oauthScopes = []string{
	upload.Scope,
	"https://www.googleapis.com/auth/userinfo.email",
}

func runServe(ctx context.Context, actx AppContext, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	listen := fs.String("listen", "", "Listen address (host:port). Default is :{http.port}.")
	publicURL := fs.String("public-url", "", "Public base URL (used to compute redirect if youtube.redirect_url not set)")
	verbose := fs.Bool("verbose", utils.Verbose, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)

	cfg := actx.Config
	secret, err := credstore.LoadClientSecret(cfg.ClientSecretFile)
	if err != nil {
		return err
	}

	redirectURL := strings.TrimSpace(cfg.RedirectURL)
	if redirectURL == "" && strings.TrimSpace(*publicURL) != "" {
		redirectURL = strings.TrimRight(strings.TrimSpace(*publicURL), "/") + "/auth/callback"
	}
	if redirectURL == "" && strings.TrimSpace(cfg.PublicURL) != "" {
		redirectURL = strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/") + "/auth/callback"
	}
	if redirectURL == "" {
		return errors.New("missing redirect URL (set youtube.redirect_url or pass --public-url)")
	}

	if *listen == "" {
		*listen = fmt.Sprintf(":%d", cfg.HTTPPort)
	}

	oauthCfg := secret.OAuthConfig(redirectURL, oauthScopes)
	pending := credstore.NewPendingAuths()
	orch := pipeline.New(cfg, actx.Creds)
	orch.History = actx.History

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		state := pending.Begin()
		authURL := oauthCfg.AuthCodeURL(state,
			oauth2.AccessTypeOffline,
			oauth2.SetAuthURLParam("prompt", "consent"),
		)
		utils.Debug("auth redirect", "state", state)
		http.Redirect(w, r, authURL, http.StatusFound)
	})

	mux.HandleFunc("/auth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" {
			http.Error(w, "Authentication failed: missing code.", http.StatusBadRequest)
			return
		}
		if err := pending.Complete(state); err != nil {
			http.Error(w, "Authentication failed: missing or expired state.", http.StatusUnauthorized)
			return
		}

		token, err := oauthCfg.Exchange(r.Context(), code)
		if err != nil {
			utils.Warn("oauth exchange failed", "err", err)
			http.Error(w, "Authentication failed: token exchange error.", http.StatusBadRequest)
			return
		}

		email, err := fetchAccountEmail(r.Context(), oauthCfg, token)
		if err != nil {
			utils.Warn("userinfo fetch failed", "err", err)
			http.Error(w, "Authentication failed: could not resolve account email.", http.StatusBadGateway)
			return
		}

		bundle := secret.BundleFromToken(token, oauthScopes)
		if err := actx.Creds.Put(email, bundle); err != nil {
			utils.Error("storing credentials failed", "account", email, "err", err)
			http.Error(w, "Failed to store credentials.", http.StatusInternalServerError)
			return
		}

		utils.Info("account authorized", "account", email)
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "Authorized %s. You can close this window.\n", email)
	})

	mux.HandleFunc("/upload-all", func(w http.ResponseWriter, r *http.Request) {
		results, err := orch.Run(r.Context())
		if err != nil {
			utils.Error("pipeline run failed", "err", err)
			http.Error(w, fmt.Sprintf("pipeline failed: %v", err), http.StatusInternalServerError)
			return
		}

		emails := make([]string, 0, len(results))
		for email := range results {
			emails = append(emails, email)
		}
		sort.Strings(emails)

		w.Header().Set("Content-Type", "text/plain")
		if len(emails) == 0 {
			_, _ = w.Write([]byte("no accounts authorized; visit /auth first\n"))
			return
		}
		for _, email := range emails {
			fmt.Fprintf(w, "%s: %s\n", email, results[email])
		}
	})

	server := &http.Server{
		Addr:              *listen,
		Handler:           httpLoggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		utils.Info("server listen", "listen", *listen, "redirect_url", redirectURL)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func fetchAccountEmail(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (string, error) {
	client := cfg.Client(ctx, token)
	client.Timeout = 10 * time.Second

	resp, err := client.Get(userinfoURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	if info.Email == "" {
		return "", errors.New("userinfo response missing email")
	}
	return strings.ToLower(info.Email), nil
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *loggingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *loggingResponseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func httpLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(lw, r)
		utils.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", lw.status,
			"bytes", lw.bytes,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
