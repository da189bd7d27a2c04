package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sweax/sweax/internal/observability"
	"github.com/sweax/sweax/internal/profile"
	"github.com/sweax/sweax/server"
	"github.com/sweax/sweax/store"
	"github.com/sweax/sweax/store/db"
)

const (
	greetingBanner = `
  ███████╗██╗    ██╗███████╗ █████╗ ██╗  ██╗
  ██╔════╝██║    ██║██╔════╝██╔══██╗╚██╗██╔╝
  ███████╗██║ █╗ ██║█████╗  ███████║ ╚███╔╝
  ╚════██║██║███╗██║██╔══╝  ██╔══██║ ██╔██╗
  ███████║╚███╔███╔╝███████╗██║  ██║██╔╝ ██╗
  ╚══════╝ ╚══╝╚══╝ ╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝
`
)

var (
	instanceProfile *profile.Profile

	rootCmd = &cobra.Command{
		Use:   "sweax",
		Short: "Türkçe konuşan yerel asistan",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			instance, _, err := newInstance(ctx)
			if err != nil {
				cancel()
				slog.Error("failed to create server", "error", err)
				return
			}

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			go func() {
				sig := <-c
				slog.Info("received signal, shutting down", "signal", sig.String())
				instance.Shutdown(ctx)
				cancel()
			}()

			printGreetings()
			if err := instance.Start(ctx); err != nil {
				if !strings.Contains(err.Error(), "Server closed") {
					slog.Error("failed to start server", "error", err)
				}
				cancel()
			}

			<-ctx.Done()
		},
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Terminalden sohbet et",
		Run: func(_ *cobra.Command, _ []string) {
			ctx := context.Background()

			instance, st, err := newInstance(ctx)
			if err != nil {
				slog.Error("failed to create server", "error", err)
				return
			}
			defer st.Close()

			runREPL(ctx, instance, st)
		},
	}
)

// newInstance builds the store and server from the resolved profile.
func newInstance(ctx context.Context) (*server.Server, *store.Store, error) {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, nil, err
	}

	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		return nil, nil, err
	}

	instance, err := server.NewServer(ctx, instanceProfile, storeInstance)
	if err != nil {
		return nil, nil, err
	}
	return instance, storeInstance, nil
}

// runREPL reads lines from stdin and feeds them to the dispatcher
// under a single throwaway conversation. "çık", "exit" or "quit" ends
// the session.
func runREPL(ctx context.Context, instance *server.Server, st *store.Store) {
	now := time.Now().Unix()
	conversation, err := st.CreateConversation(ctx, &store.Conversation{
		UID:       shortuuid.New(),
		CreatorID: 1,
		Title:     "Terminal",
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		slog.Error("failed to create conversation", "error", err)
		return
	}

	fmt.Println("Sweax hazır. Çıkmak için 'çık' yaz.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "çık", "exit", "quit":
			fmt.Println("Görüşürüz gardaş.")
			return
		}

		reqCtx := observability.NewRequestContext(slog.Default(), 1, conversation.ID)
		turnCtx := observability.WithRequestContext(ctx, reqCtx)
		fmt.Println(instance.Dispatcher().Speak(turnCtx, conversation.ID, input))
	}
}

func printGreetings() {
	fmt.Print(greetingBanner)
	fmt.Printf("Version %s has been started on port %d\n", instanceProfile.Version, instanceProfile.Port)
	fmt.Println("---")
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("sweax")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd.AddCommand(chatCmd)
}

func initProfile() error {
	instanceProfile = &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: "0.1.0",
		Secret:  viper.GetString("secret"),

		Timezone:         viper.GetString("timezone"),
		AIBaseURL:        viper.GetString("ai_base_url"),
		AIAPIKey:         viper.GetString("ai_api_key"),
		AIChatModel:      viper.GetString("ai_chat_model"),
		AIReasoningModel: viper.GetString("ai_reasoning_model"),
		AIEmbeddingModel: viper.GetString("ai_embedding_model"),

		WikiPrimaryLang:  viper.GetString("wiki_primary_lang"),
		WikiFallbackLang: viper.GetString("wiki_fallback_lang"),

		TranslateBaseURL: viper.GetString("translate_base_url"),
		TranslateAPIKey:  viper.GetString("translate_api_key"),
	}
	if instanceProfile.Secret == "" {
		instanceProfile.Secret = "sweax"
	}
	return instanceProfile.Validate()
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cobra.OnInitialize(func() {
		if err := initProfile(); err != nil {
			slog.Error("failed to load profile", "error", err)
			os.Exit(1)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
