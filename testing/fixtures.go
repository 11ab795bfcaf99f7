package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/billboard-engine/models"
	"github.com/amirphl/billboard-engine/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestVehicle inserts an active vehicle on tariff
func (tf *TestFixtures) CreateTestVehicle(tariff string, override bool) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		PlateNumber:      fmt.Sprintf("TST-%06d", rand.Intn(1000000)),
		Tariff:           tariff,
		PlaylistOverride: override,
		IsActive:         utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(vehicle).Error; err != nil {
		return nil, fmt.Errorf("failed to create test vehicle: %w", err)
	}
	return vehicle, nil
}

// CreateTestContractVideo inserts an active contract video
func (tf *TestFixtures) CreateTestContractVideo(durationSeconds float64, playsPerHour int, tariffs ...string) (*models.Video, error) {
	return tf.createVideo(models.VideoKindContract, durationSeconds, &playsPerHour, 0, tariffs)
}

// CreateTestFillerVideo inserts an active filler video
func (tf *TestFixtures) CreateTestFillerVideo(durationSeconds float64, priority int, tariffs ...string) (*models.Video, error) {
	return tf.createVideo(models.VideoKindFiller, durationSeconds, nil, priority, tariffs)
}

func (tf *TestFixtures) createVideo(kind models.VideoKind, durationSeconds float64, playsPerHour *int, priority int, tariffs []string) (*models.Video, error) {
	video := &models.Video{
		Title:           fmt.Sprintf("%s-%d", kind, time.Now().UnixNano()),
		FilePath:        fmt.Sprintf("videos/%s_%d.mp4", kind, rand.Intn(1000000)),
		DurationSeconds: durationSeconds,
		Kind:            kind,
		PlaysPerHour:    playsPerHour,
		Priority:        priority,
		Tariffs:         tariffs,
		IsActive:        utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(video).Error; err != nil {
		return nil, fmt.Errorf("failed to create test video: %w", err)
	}
	return video, nil
}

// DeactivateVideo flips is_active off for a video
func (tf *TestFixtures) DeactivateVideo(id uint) error {
	return tf.DB.DB.Model(&models.Video{}).Where("id = ?", id).Update("is_active", false).Error
}
