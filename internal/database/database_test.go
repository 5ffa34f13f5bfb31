package database

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

func TestConnectRedis(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client, err := ConnectRedis("redis://" + mini.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = ConnectRedis("")
	require.Error(t, err)
}

func TestConnectRequiresURLs(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)

	_, err = ConnectNATS("", "test")
	require.Error(t, err)
}

func TestMigrateCreatesEssayTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, model := range []interface{}{&models.Essay{}, &models.EssayVersion{}, &models.AIAnalysisResult{}, &models.CompletionEvent{}, &models.EssayPrompt{}} {
		require.True(t, db.Migrator().HasTable(model))
	}
}
