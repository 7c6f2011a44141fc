package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
	"github.com/rocketscienceinc/gobang-backend/internal/entity"
	"github.com/rocketscienceinc/gobang-backend/internal/gobang"
)

var errRedisDown = errors.New("redis down")

type mockGameRepo struct {
	mock.Mock
}

func newMockGameRepo(t *testing.T) *mockGameRepo {
	t.Helper()

	repo := &mockGameRepo{}
	t.Cleanup(func() { repo.AssertExpectations(t) })

	return repo
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)

	game, _ := args.Get(0).(*entity.Game)

	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func newManager(repo gameRepo) *GameManager {
	return NewGameManager(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, gobang.DefaultBoardSize)
}

func TestGameManager_NewGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates and stores a fresh game", func(t *testing.T) {
		// Given: a repository that accepts writes
		repo := newMockGameRepo(t)
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: a new game is requested
		game, err := newManager(repo).NewGame(ctx)

		// Then: a fresh game with an ID is returned
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, entity.Black, game.Turn)
		assert.Equal(t, entity.StatusInProgress, game.Status)
		assert.Equal(t, gobang.DefaultBoardSize, game.Board.Size)
	})

	t.Run("Returns error when storage fails", func(t *testing.T) {
		// Given: a repository that fails on write
		repo := newMockGameRepo(t)
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errRedisDown).Once()

		// When: a new game is requested
		game, err := newManager(repo).NewGame(ctx)

		// Then: the storage error is returned
		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}

func TestGameManager_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores accepted move", func(t *testing.T) {
		// Given: a stored fresh game
		stored := gobang.Reset("g1", gobang.DefaultBoardSize)
		repo := newMockGameRepo(t)
		repo.On("GetByID", mock.Anything, "g1").Return(&stored, nil).Once()
		repo.On("CreateOrUpdate", mock.Anything, mock.MatchedBy(func(game *entity.Game) bool {
			return game.ID == "g1" && game.MoveCount == 1 && game.Board.At(7, 7) == entity.Black
		})).Return(nil).Once()

		// When: black plays the center
		game, err := newManager(repo).MakeMove(ctx, "g1", 7, 7)

		// Then: the updated game is returned
		require.NoError(t, err)
		assert.Equal(t, entity.White, game.Turn)
		assert.Equal(t, 1, game.MoveCount)
	})

	t.Run("Rejected move is not stored", func(t *testing.T) {
		// Given: a stored game with (7, 7) occupied
		stored, err := gobang.ApplyMove(gobang.Reset("g1", gobang.DefaultBoardSize), 7, 7)
		require.NoError(t, err)

		repo := newMockGameRepo(t)
		repo.On("GetByID", mock.Anything, "g1").Return(&stored, nil).Once()

		// When: white plays the same cell
		game, err := newManager(repo).MakeMove(ctx, "g1", 7, 7)

		// Then: the rejection is reported with the unchanged game
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.NotNil(t, game)
		assert.Equal(t, stored, *game)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Move after game over is rejected", func(t *testing.T) {
		// Given: a drawn game
		stored := gobang.Reset("g1", gobang.DefaultBoardSize)
		stored.Status = entity.StatusDraw

		repo := newMockGameRepo(t)
		repo.On("GetByID", mock.Anything, "g1").Return(&stored, nil).Once()

		// When: another move is attempted
		_, err := newManager(repo).MakeMove(ctx, "g1", 0, 0)

		// Then: ErrGameFinished is returned
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Returns not found for unknown game", func(t *testing.T) {
		repo := newMockGameRepo(t)
		repo.On("GetByID", mock.Anything, "missing").Return(nil, apperror.ErrGameNotFound).Once()

		game, err := newManager(repo).MakeMove(ctx, "missing", 0, 0)

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, game)
	})

	t.Run("Returns error when update fails", func(t *testing.T) {
		stored := gobang.Reset("g1", gobang.DefaultBoardSize)
		repo := newMockGameRepo(t)
		repo.On("GetByID", mock.Anything, "g1").Return(&stored, nil).Once()
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errRedisDown).Once()

		game, err := newManager(repo).MakeMove(ctx, "g1", 0, 0)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}

func TestGameManager_ResetGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces the game with a fresh one", func(t *testing.T) {
		// Given: a stored game that black has won on a 9x9 board
		stored := gobang.Reset("g1", 9)
		for col := range 4 {
			var err error
			stored, err = gobang.ApplyMove(stored, 0, col)
			require.NoError(t, err)
			stored, err = gobang.ApplyMove(stored, 1, col)
			require.NoError(t, err)
		}
		stored, err := gobang.ApplyMove(stored, 0, 4)
		require.NoError(t, err)
		require.True(t, stored.IsWon())

		repo := newMockGameRepo(t)
		repo.On("GetByID", mock.Anything, "g1").Return(&stored, nil).Once()
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: the game is reset
		game, err := newManager(repo).ResetGame(ctx, "g1")

		// Then: the same ID and size hold a fresh game
		require.NoError(t, err)
		assert.Equal(t, gobang.Reset("g1", 9), *game)
	})

	t.Run("Returns not found for unknown game", func(t *testing.T) {
		repo := newMockGameRepo(t)
		repo.On("GetByID", mock.Anything, "missing").Return(nil, apperror.ErrGameNotFound).Once()

		_, err := newManager(repo).ResetGame(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_EndGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the game", func(t *testing.T) {
		repo := newMockGameRepo(t)
		repo.On("DeleteByID", mock.Anything, "g1").Return(nil).Once()

		require.NoError(t, newManager(repo).EndGame(ctx, "g1"))
	})

	t.Run("Returns not found for unknown game", func(t *testing.T) {
		repo := newMockGameRepo(t)
		repo.On("DeleteByID", mock.Anything, "missing").Return(apperror.ErrGameNotFound).Once()

		require.ErrorIs(t, newManager(repo).EndGame(ctx, "missing"), apperror.ErrGameNotFound)
	})
}

func TestGameManager_GetGame(t *testing.T) {
	stored := gobang.Reset("g1", gobang.DefaultBoardSize)
	repo := newMockGameRepo(t)
	repo.On("GetByID", mock.Anything, "g1").Return(&stored, nil).Once()

	game, err := newManager(repo).GetGame(context.Background(), "g1")

	require.NoError(t, err)
	assert.Equal(t, &stored, game)
}

// slowRepo keeps games in memory and delays reads so concurrent callers overlap.
type slowRepo struct {
	mu    sync.Mutex
	games map[string]entity.Game
	delay time.Duration
}

func (that *slowRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = *game

	return nil
}

func (that *slowRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	game, ok := that.games[id]
	that.mu.Unlock()

	time.Sleep(that.delay)

	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return &game, nil
}

func (that *slowRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, id)

	return nil
}

func TestGameManager_MakeMove_Concurrent(t *testing.T) {
	ctx := context.Background()

	// Given: a stored fresh game behind a slow repository
	repo := &slowRepo{
		games: map[string]entity.Game{"g1": gobang.Reset("g1", gobang.DefaultBoardSize)},
		delay: 20 * time.Millisecond,
	}
	manager := newManager(repo)

	// When: two moves on different cells arrive at the same time
	const moves = 2

	var wg sync.WaitGroup
	errs := make([]error, moves)
	for i := range moves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = manager.MakeMove(ctx, "g1", 0, i)
		}()
	}
	wg.Wait()

	// Then: both are accepted and both stones survive, one per player
	for _, err := range errs {
		require.NoError(t, err)
	}

	final, err := manager.GetGame(ctx, "g1")
	require.NoError(t, err)

	assert.Equal(t, moves, final.MoveCount)
	assert.Equal(t, entity.Black, final.Turn)
	assert.ElementsMatch(t,
		[]entity.Stone{entity.Black, entity.White},
		[]entity.Stone{final.Board.At(0, 0), final.Board.At(0, 1)},
	)
}

func TestGameLocks_ReleasesEntries(t *testing.T) {
	locks := newGameLocks()

	unlock := locks.lock("g1")
	require.Len(t, locks.locks, 1)

	unlock()
	assert.Empty(t, locks.locks)
}
