package repository_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/central-university-dev/go-wallpost/internal/bot/repository"
	"github.com/central-university-dev/go-wallpost/internal/config"
	"github.com/central-university-dev/go-wallpost/internal/database"
	domainerrors "github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/central-university-dev/go-wallpost/internal/domain/repositories"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testDB *database.PostgresDB
	logger *slog.Logger
)

func setupTestDatabase(ctx context.Context) (*database.PostgresDB, func(), error) {
	dbName := "testdb"
	dbUser := "testuser"
	dbPassword := "testpassword"

	container, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(10*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось запустить контейнер postgres: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось получить хост контейнера: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось получить порт контейнера: %w", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, port.Port(), dbName)

	migrationsPath, _ := filepath.Abs("../../../migrations")
	migrateURL := fmt.Sprintf("file://%s", migrationsPath)

	m, err := migrate.New(migrateURL, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, nil, fmt.Errorf("не удалось применить миграции: %w", err)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return nil, nil, fmt.Errorf("ошибка закрытия источника миграций: %w", sourceErr)
	}

	if dbErr != nil {
		return nil, nil, fmt.Errorf("ошибка закрытия подключения БД миграций: %w", dbErr)
	}

	testCfg := &config.Config{
		DatabaseURL:     dsn,
		DatabaseMaxConn: 5,
	}

	db, err := database.NewPostgresDB(ctx, testCfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось подключиться к тестовой БД: %w", err)
	}

	cleanup := func() {
		db.Close()

		if err := container.Terminate(ctx); err != nil {
			logger.Error("Не удалось остановить контейнер postgres", "error", err)
		}
	}

	return db, cleanup, nil
}

func TestMain(m *testing.M) {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	exitCode := func() int {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		var cleanup func()

		var err error

		testDB, cleanup, err = setupTestDatabase(ctx)
		if err != nil {
			logger.Error("Ошибка при настройке тестовой БД", "error", err)
			return 1
		}

		code := m.Run()

		cleanup()

		return code
	}()

	os.Exit(exitCode)
}

func clearTables(ctx context.Context, t *testing.T) {
	t.Helper()

	for _, table := range []string{"posts", "users"} {
		_, err := testDB.Pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		require.NoErrorf(t, err, "Failed to clear table %s", table)
	}
}

func createApprovedUser(ctx context.Context, t *testing.T, userRepo repositories.UserRepository, telegramID string) *models.User {
	t.Helper()

	user, err := userRepo.GetOrCreate(ctx, telegramID, "user"+telegramID, "Имя"+telegramID)
	require.NoError(t, err)

	user.IsApproved = true
	require.NoError(t, userRepo.Update(ctx, user))

	return user
}

func runTestsForConfig(t *testing.T, accessType config.AccessType) {
	t.Helper()

	ctx := context.Background()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	testCfg := &config.Config{
		DatabaseAccessType: accessType,
	}

	factory := repository.NewFactory(testDB, testCfg, quiet)

	userRepo, err := factory.CreateUserRepository()
	require.NoError(t, err, "Ошибка создания UserRepository для %s", accessType)

	postRepo, err := factory.CreatePostRepository()
	require.NoError(t, err, "Ошибка создания PostRepository для %s", accessType)

	t.Run("UserRepository GetOrCreate idempotent", func(t *testing.T) {
		clearTables(ctx, t)

		user, err := userRepo.GetOrCreate(ctx, "1001", "vasya", "Вася")
		require.NoError(t, err)
		require.NotZero(t, user.ID)
		assert.False(t, user.IsApproved)

		same, err := userRepo.GetOrCreate(ctx, "1001", "vasya", "Вася")
		require.NoError(t, err)
		assert.Equal(t, user.ID, same.ID)
	})

	t.Run("UserRepository FindByTelegramID not found", func(t *testing.T) {
		clearTables(ctx, t)

		_, err := userRepo.FindByTelegramID(ctx, "9999")
		require.Error(t, err)
		assert.ErrorIs(t, err, &domainerrors.ErrUserNotFound{})
	})

	t.Run("UserRepository Update and IncrementPostCount", func(t *testing.T) {
		clearTables(ctx, t)

		user := createApprovedUser(ctx, t, userRepo, "1002")

		user.IsAnonymousMode = true
		user.AvatarURL = "https://files.example/a.jpg"
		require.NoError(t, userRepo.Update(ctx, user))

		found, err := userRepo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, found.IsApproved)
		assert.True(t, found.IsAnonymousMode)
		assert.Equal(t, "https://files.example/a.jpg", found.AvatarURL)

		count, err := userRepo.IncrementPostCount(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = userRepo.IncrementPostCount(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("UserRepository FindApproved and FindAll", func(t *testing.T) {
		clearTables(ctx, t)

		createApprovedUser(ctx, t, userRepo, "1003")

		_, err := userRepo.GetOrCreate(ctx, "1004", "petya", "Петя")
		require.NoError(t, err)

		approved, err := userRepo.FindApproved(ctx)
		require.NoError(t, err)
		require.Len(t, approved, 1)
		assert.Equal(t, "1003", approved[0].TelegramID)

		all, err := userRepo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("PostRepository Create and FindByID with author", func(t *testing.T) {
		clearTables(ctx, t)

		author := createApprovedUser(ctx, t, userRepo, "1005")

		post := &models.Post{
			AuthorID:    author.ID,
			Content:     "тестовый пост",
			IsAnonymous: true,
			Status:      models.StatusDraft,
		}

		require.NoError(t, postRepo.Create(ctx, post))
		require.NotZero(t, post.ID)
		require.False(t, post.CreatedAt.IsZero())

		found, err := postRepo.FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "тестовый пост", found.Content)
		assert.True(t, found.IsAnonymous)
		assert.Equal(t, models.StatusDraft, found.Status)
		require.NotNil(t, found.Author)
		assert.Equal(t, "1005", found.Author.TelegramID)
	})

	t.Run("PostRepository FindByID not found", func(t *testing.T) {
		clearTables(ctx, t)

		_, err := postRepo.FindByID(ctx, -1)
		require.Error(t, err)
		assert.ErrorIs(t, err, &domainerrors.ErrPostNotFound{})
	})

	t.Run("PostRepository Update status and remark", func(t *testing.T) {
		clearTables(ctx, t)

		author := createApprovedUser(ctx, t, userRepo, "1006")
		post := &models.Post{AuthorID: author.ID, Content: "до правки", Status: models.StatusDraft}
		require.NoError(t, postRepo.Create(ctx, post))

		post.Status = models.StatusPending
		post.Content = "после правки"
		post.AdminRemark = "замечание"
		post.IsPinned = true
		require.NoError(t, postRepo.Update(ctx, post))

		found, err := postRepo.FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, found.Status)
		assert.Equal(t, "после правки", found.Content)
		assert.Equal(t, "замечание", found.AdminRemark)
		assert.True(t, found.IsPinned)
	})

	t.Run("PostRepository FindByAuthorAndStatuses", func(t *testing.T) {
		clearTables(ctx, t)

		author := createApprovedUser(ctx, t, userRepo, "1007")
		other := createApprovedUser(ctx, t, userRepo, "1008")

		for _, status := range []models.PostStatus{models.StatusDraft, models.StatusRejected, models.StatusPublished} {
			post := &models.Post{AuthorID: author.ID, Content: string(status), Status: status}
			require.NoError(t, postRepo.Create(ctx, post))
		}

		foreign := &models.Post{AuthorID: other.ID, Content: "чужой", Status: models.StatusDraft}
		require.NoError(t, postRepo.Create(ctx, foreign))

		posts, err := postRepo.FindByAuthorAndStatuses(ctx, author.ID,
			[]models.PostStatus{models.StatusDraft, models.StatusRejected})
		require.NoError(t, err)
		assert.Len(t, posts, 2)

		for _, post := range posts {
			assert.Equal(t, author.ID, post.AuthorID)
		}
	})

	t.Run("PostRepository FindByStatus and CountByStatus", func(t *testing.T) {
		clearTables(ctx, t)

		author := createApprovedUser(ctx, t, userRepo, "1009")

		for i := 0; i < 3; i++ {
			post := &models.Post{AuthorID: author.ID, Content: fmt.Sprintf("пост %d", i), Status: models.StatusPending}
			require.NoError(t, postRepo.Create(ctx, post))
		}

		pending, err := postRepo.FindByStatus(ctx, models.StatusPending)
		require.NoError(t, err)
		assert.Len(t, pending, 3)

		count, err := postRepo.CountByStatus(ctx, models.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		count, err = postRepo.CountByStatus(ctx, models.StatusPublished)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("PostRepository Delete", func(t *testing.T) {
		clearTables(ctx, t)

		author := createApprovedUser(ctx, t, userRepo, "1010")
		post := &models.Post{AuthorID: author.ID, Content: "на удаление", Status: models.StatusDraft}
		require.NoError(t, postRepo.Create(ctx, post))

		require.NoError(t, postRepo.Delete(ctx, post.ID))

		_, err := postRepo.FindByID(ctx, post.ID)
		assert.ErrorIs(t, err, &domainerrors.ErrPostNotFound{})
	})
}

func TestRepositoriesWithSQLAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("пропуск интеграционного теста в коротком режиме")
	}

	runTestsForConfig(t, config.SQLAccess)
}

func TestRepositoriesWithSquirrelAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("пропуск интеграционного теста в коротком режиме")
	}

	runTestsForConfig(t, config.SquirrelAccess)
}
