package repository

import (
	"errors"
	"testing"

	"github.com/beautypk/photo-arena/internal/models"
)

func setupVoteTest(t *testing.T) (*DB, *VoteRepository) {
	t.Helper()
	db := setupTestDB(t)
	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")
	return db, NewVoteRepository(db)
}

func getPhoto(t *testing.T, db *DB, id string) *models.Photo {
	t.Helper()
	var photo models.Photo
	if err := db.First(&photo, "id = ?", id).Error; err != nil {
		t.Fatalf("Failed to load photo %s: %v", id, err)
	}
	return &photo
}

func TestRecordVote_EvenMatch(t *testing.T) {
	db, repo := setupVoteTest(t)
	createTestPhoto(t, db, "w", "alice")
	createTestPhoto(t, db, "l", "bob")

	result, err := repo.RecordVote("w", "l", nil)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}

	if result.AppliedDelta != 16 {
		t.Errorf("Expected delta 16 for even 1000/1000 match, got %d", result.AppliedDelta)
	}
	if result.NewWinnerScore != 1016 || result.NewLoserScore != 984 {
		t.Errorf("Expected 1016/984, got %d/%d", result.NewWinnerScore, result.NewLoserScore)
	}

	winner := getPhoto(t, db, "w")
	loser := getPhoto(t, db, "l")
	if winner.Score != 1016 || winner.Wins != 1 || winner.Losses != 0 || winner.Matches != 1 {
		t.Errorf("Winner counters wrong: %+v", winner)
	}
	if loser.Score != 984 || loser.Wins != 0 || loser.Losses != 1 || loser.Matches != 1 {
		t.Errorf("Loser counters wrong: %+v", loser)
	}
}

func TestRecordVote_ZeroSum(t *testing.T) {
	db, repo := setupVoteTest(t)
	createTestPhoto(t, db, "w", "alice")
	createTestPhoto(t, db, "l", "bob")

	for i := 0; i < 5; i++ {
		if _, err := repo.RecordVote("w", "l", nil); err != nil {
			t.Fatalf("RecordVote %d failed: %v", i, err)
		}
	}

	winner := getPhoto(t, db, "w")
	loser := getPhoto(t, db, "l")
	if winner.Score+loser.Score != 2*models.DefaultScore {
		t.Errorf("Global score sum drifted: %d + %d", winner.Score, loser.Score)
	}
	if winner.Matches != 5 || loser.Matches != 5 {
		t.Errorf("Expected 5 matches each, got %d/%d", winner.Matches, loser.Matches)
	}
}

func TestRecordVote_WritesLedgerEntries(t *testing.T) {
	db, repo := setupVoteTest(t)
	createTestPhoto(t, db, "w", "alice")
	createTestPhoto(t, db, "l", "bob")

	voter := "alice"
	result, err := repo.RecordVote("w", "l", &voter)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}

	winTx, err := repo.GetTransactionsByPhoto("w", 10)
	if err != nil {
		t.Fatalf("GetTransactionsByPhoto failed: %v", err)
	}
	if len(winTx) != 1 {
		t.Fatalf("Expected 1 winner transaction, got %d", len(winTx))
	}
	if winTx[0].Delta != result.AppliedDelta || winTx[0].PreviousScore != 1000 || winTx[0].NewScore != 1016 {
		t.Errorf("Winner ledger entry wrong: %+v", winTx[0])
	}
	if winTx[0].Reason != models.TransactionReasonWin {
		t.Errorf("Expected win reason, got %s", winTx[0].Reason)
	}

	lossTx, err := repo.GetTransactionsByPhoto("l", 10)
	if err != nil {
		t.Fatalf("GetTransactionsByPhoto failed: %v", err)
	}
	if len(lossTx) != 1 || lossTx[0].Delta != -result.AppliedDelta {
		t.Fatalf("Loser ledger entry wrong: %+v", lossTx)
	}

	count, err := repo.CountVotesByVoter("alice")
	if err != nil {
		t.Fatalf("CountVotesByVoter failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 vote by alice, got %d", count)
	}
}

func TestRecordVote_MinimumDeltaOfOne(t *testing.T) {
	db, repo := setupVoteTest(t)
	createTestPhoto(t, db, "w", "alice")
	createTestPhoto(t, db, "l", "bob")
	db.Model(&models.Photo{}).Where("id = ?", "w").Update("score", 1800)
	db.Model(&models.Photo{}).Where("id = ?", "l").Update("score", 600)

	result, err := repo.RecordVote("w", "l", nil)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if result.AppliedDelta != 1 {
		t.Errorf("Expected clamped delta 1 for a heavy favorite, got %d", result.AppliedDelta)
	}
}

func TestRecordVote_UnknownPhoto(t *testing.T) {
	db, repo := setupVoteTest(t)
	createTestPhoto(t, db, "w", "alice")

	_, err := repo.RecordVote("w", "ghost", nil)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecordVote_SelfMatchRejected(t *testing.T) {
	db, repo := setupVoteTest(t)
	createTestPhoto(t, db, "w", "alice")

	_, err := repo.RecordVote("w", "w", nil)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for self-match, got %v", err)
	}
}

func TestRecordVote_ReportsMutualTags(t *testing.T) {
	db, repo := setupVoteTest(t)
	createTestPhoto(t, db, "w", "alice", "portrait", "street")
	createTestPhoto(t, db, "l", "bob", "portrait", "landscape")

	result, err := repo.RecordVote("w", "l", nil)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if len(result.MutualTags) != 1 || result.MutualTags[0] != "portrait" {
		t.Errorf("Expected mutual tags [portrait], got %v", result.MutualTags)
	}
}

func TestApplyScoreUpdate_StaleReadConflicts(t *testing.T) {
	db, _ := setupVoteTest(t)
	createTestPhoto(t, db, "p", "alice")

	// Simulate a concurrent vote having moved the score after our read.
	db.Model(&models.Photo{}).Where("id = ?", "p").Update("score", 1016)

	err := applyScoreUpdate(db.DB, "p", models.DefaultScore, 1032, "wins")
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("Expected ErrConflict on stale read, got %v", err)
	}

	// The guarded write must not have landed.
	if photo := getPhoto(t, db, "p"); photo.Score != 1016 || photo.Matches != 0 {
		t.Errorf("Conflicting update leaked: %+v", photo)
	}
}

func TestUpsertTagStats_SymmetricAccounting(t *testing.T) {
	db, repo := setupVoteTest(t)
	createTestPhoto(t, db, "w", "alice", "portrait")
	createTestPhoto(t, db, "l", "bob", "portrait")

	if err := repo.UpsertTagStats("w", "l", []string{"portrait"}); err != nil {
		t.Fatalf("UpsertTagStats failed: %v", err)
	}

	var winnerStat, loserStat models.PhotoTagStat
	if err := db.First(&winnerStat, "photo_id = ? AND tag = ?", "w", "portrait").Error; err != nil {
		t.Fatalf("Winner stat missing: %v", err)
	}
	if err := db.First(&loserStat, "photo_id = ? AND tag = ?", "l", "portrait").Error; err != nil {
		t.Fatalf("Loser stat missing: %v", err)
	}

	if winnerStat.Score != 1016 || winnerStat.Wins != 1 || winnerStat.Losses != 0 || winnerStat.Matches != 1 {
		t.Errorf("Winner tag stat wrong: %+v", winnerStat)
	}
	if loserStat.Score != 984 || loserStat.Wins != 0 || loserStat.Losses != 1 || loserStat.Matches != 1 {
		t.Errorf("Loser tag stat wrong: %+v", loserStat)
	}
}

func TestUpsertTagStats_UpdatesExistingRows(t *testing.T) {
	db, repo := setupVoteTest(t)
	createTestPhoto(t, db, "w", "alice", "portrait")
	createTestPhoto(t, db, "l", "bob", "portrait")

	if err := repo.UpsertTagStats("w", "l", []string{"portrait"}); err != nil {
		t.Fatalf("First UpsertTagStats failed: %v", err)
	}
	if err := repo.UpsertTagStats("l", "w", []string{"portrait"}); err != nil {
		t.Fatalf("Second UpsertTagStats failed: %v", err)
	}

	var stats []models.PhotoTagStat
	if err := db.Where("tag = ?", "portrait").Find(&stats).Error; err != nil {
		t.Fatalf("Failed to load tag stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected 2 stat rows, got %d", len(stats))
	}
	for _, stat := range stats {
		if stat.Matches != 2 || stat.Wins != 1 || stat.Losses != 1 {
			t.Errorf("Tag stat counters wrong after a revenge match: %+v", stat)
		}
	}
}

func TestUpsertTagStats_IndependentPerTag(t *testing.T) {
	db, repo := setupVoteTest(t)
	createTestPhoto(t, db, "w", "alice", "portrait", "street")
	createTestPhoto(t, db, "l", "bob", "portrait", "street")

	if err := repo.UpsertTagStats("w", "l", []string{"portrait", "street"}); err != nil {
		t.Fatalf("UpsertTagStats failed: %v", err)
	}

	var count int64
	db.Model(&models.PhotoTagStat{}).Count(&count)
	if count != 4 {
		t.Errorf("Expected 4 stat rows (2 photos x 2 tags), got %d", count)
	}
}
