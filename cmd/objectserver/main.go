package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/objectkit/internal/api"
	"github.com/annel0/objectkit/internal/api/replay"
	"github.com/annel0/objectkit/internal/auth"
	"github.com/annel0/objectkit/internal/behavior/implementations"
	"github.com/annel0/objectkit/internal/cache"
	"github.com/annel0/objectkit/internal/config"
	"github.com/annel0/objectkit/internal/editor"
	"github.com/annel0/objectkit/internal/eventbus"
	"github.com/annel0/objectkit/internal/logging"
	"github.com/annel0/objectkit/internal/observability"
	"github.com/annel0/objectkit/internal/platform"
	"github.com/annel0/objectkit/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-конфигурации (по умолчанию $OBJECTKIT_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if err := logging.InitDefaultLogger("objectserver", logging.Options{
		Dir:          cfg.Logging.Dir,
		ConsoleLevel: level,
		FileLevel:    level,
	}); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🧩 Запуск objectkit: storage=%s, REST=:%d", cfg.Storage.Backend, cfg.Server.GetRESTPort())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Сервер успешно остановлен")
}

func run(ctx context.Context, cfg *config.Config) error {
	// === ИНИЦИАЛИЗАЦИЯ КОМПОНЕНТОВ ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	cold, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	store, err := cache.Wrap(ctx, cfg.Cache, cold)
	if err != nil {
		cold.Close()
		return err
	}
	defer store.Close()

	bus, err := openEventBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()

	busMetrics := eventbus.NewMetricsExporter(bus, prometheus.DefaultRegisterer)
	busMetrics.Start(5 * time.Second)
	defer busMetrics.Stop()

	if _, err := eventbus.StartLoggingListener(ctx, bus); err != nil {
		return err
	}

	p := platform.New("objectkit")
	implementations.RegisterDefaults(p)
	logging.Debug("Зарегистрировано типов поведений: %d", len(p.BehaviorTypes()))

	svc := editor.NewService(
		storage.NewProjectRepository(store, p), p,
		editor.WithEventBus(bus),
		editor.WithMetrics(editor.NewMetrics(prometheus.DefaultRegisterer)),
	)

	history := replay.NewReplayService(replay.NewMemoryEventStore(4096))
	if _, err := history.Record(ctx, bus); err != nil {
		return err
	}

	webhooks := api.NewOutboundWebhookManager("objectkit")
	defer webhooks.Close()
	if _, err := webhooks.Attach(ctx, bus); err != nil {
		return err
	}

	authCfg, err := setupAuth(ctx, cfg.Auth, store)
	if err != nil {
		return err
	}

	server := api.NewRestServer(api.Config{
		Port:     cfg.Server.GetRESTPort(),
		Editor:   svc,
		Replay:   history,
		Webhooks: webhooks,
		Auth:     authCfg,
		Logger:   logging.GetAPILogger(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   ❤️  Health check: http://localhost:%d/health", cfg.Server.GetRESTPort())

	// === GRACEFUL SHUTDOWN ===
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал завершения, остановка...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	return nil
}

// openEventBus выбирает JetStream, если задан URL, иначе шину в памяти
func openEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		logging.Info("📨 Шина событий: in-memory")
		return eventbus.NewMemoryBus(1024), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, err
	}
	logging.Info("📨 Шина событий: NATS JetStream %s (stream=%s)", cfg.URL, cfg.Stream)
	return bus, nil
}

// setupAuth готовит пользователей и выпуск токенов. Администратор из
// конфигурации создаётся при первом запуске.
func setupAuth(ctx context.Context, cfg config.AuthConfig, store storage.DocumentStore) (*api.AuthConfig, error) {
	if !cfg.Enabled {
		logging.Warn("🔓 Авторизация отключена: изменения доступны без токена")
		return nil, nil
	}

	secret := cfg.GetJWTSecret()
	if secret == "" {
		logging.Warn("🔑 JWT секрет не задан, используется случайный: токены не переживут перезапуск")
	}
	tokens, err := auth.NewTokenIssuer(secret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}

	users := auth.NewStoreUserRepo(store)
	if cfg.AdminPassword != "" {
		if err := users.EnsureUser(ctx, cfg.AdminUser, cfg.AdminPassword, true); err != nil {
			return nil, fmt.Errorf("ошибка создания администратора %q: %w", cfg.AdminUser, err)
		}
	}
	logging.Info("🔐 Авторизация включена (администратор: %s)", cfg.AdminUser)
	return &api.AuthConfig{Users: users, Tokens: tokens}, nil
}
