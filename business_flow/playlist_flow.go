package businessflow

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/amirphl/billboard-engine/app/dto"
	"github.com/amirphl/billboard-engine/app/services"
	"github.com/amirphl/billboard-engine/config"
	"github.com/amirphl/billboard-engine/models"
	"github.com/amirphl/billboard-engine/scheduling"
	"github.com/amirphl/billboard-engine/utils"
	"github.com/google/uuid"
)

// Generation outcomes reported to the observer
const (
	OutcomeSuccess      = "success"
	OutcomeEmptyCatalog = "empty_catalog"
	OutcomeError        = "error"
)

// GenerationObserver receives generation telemetry
type GenerationObserver interface {
	ObserveGeneration(scopeKind, outcome string, elapsed time.Duration)
	ObserveCoalesced(scopeKind string)
	ObserveWarnings(warnings []scheduling.Warning)
}

// PlaylistFlow handles playlist retrieval and generation per scope
type PlaylistFlow interface {
	// GetCurrent returns the stored playlist of scope, expired or not.
	// It never waits for an in-flight generation.
	GetCurrent(ctx context.Context, scope scheduling.Scope) (*models.Playlist, error)
	// Regenerate builds and stores a new playlist covering hours from now.
	// Concurrent calls for the same scope share one generation.
	Regenerate(ctx context.Context, scope scheduling.Scope, hours int) (*models.Playlist, error)

	FetchByVehicle(ctx context.Context, vehicleID uint) (*dto.PlaylistResponse, error)
	FetchByTariff(ctx context.Context, tariff string) (*dto.PlaylistResponse, error)
	RegenerateByVehicle(ctx context.Context, vehicleID uint, hours int) (*dto.PlaylistResponse, error)
	RegenerateByTariff(ctx context.Context, tariff string, hours int) (*dto.PlaylistResponse, error)

	ExportVehicleTimeline(ctx context.Context, vehicleID uint) (string, []byte, error)
	ExportTariffTimeline(ctx context.Context, tariff string) (string, []byte, error)
}

// PlaylistFlowImpl implements PlaylistFlow
type PlaylistFlowImpl struct {
	resolver       ScopeResolver
	catalog        CatalogAccessor
	store          PlaylistStore
	publisher      services.EventPublisher
	observer       GenerationObserver
	playlistConfig config.PlaylistConfig
	mediaConfig    config.MediaConfig
	locks          *generationGroup
	logger         *log.Logger

	now  func() time.Time
	seed func() uint64
}

func NewPlaylistFlow(
	resolver ScopeResolver,
	catalog CatalogAccessor,
	store PlaylistStore,
	publisher services.EventPublisher,
	observer GenerationObserver,
	playlistConfig config.PlaylistConfig,
	mediaConfig config.MediaConfig,
	logger *log.Logger,
) PlaylistFlow {
	if publisher == nil {
		publisher = services.NewNoopPublisher()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &PlaylistFlowImpl{
		resolver:       resolver,
		catalog:        catalog,
		store:          store,
		publisher:      publisher,
		observer:       observer,
		playlistConfig: playlistConfig,
		mediaConfig:    mediaConfig,
		locks:          newGenerationGroup(),
		logger:         logger,
		now:            utils.UTCNow,
		seed:           rand.Uint64,
	}
}

func (s *PlaylistFlowImpl) GetCurrent(ctx context.Context, scope scheduling.Scope) (*models.Playlist, error) {
	if scope.IsZero() {
		return nil, NewBusinessError("UNKNOWN_SCOPE", "empty scope", ErrUnknownScope)
	}
	playlist, err := s.store.Current(ctx, scope)
	if err != nil {
		return nil, NewBusinessError("PLAYLIST_LOAD_FAILED", "Failed to load playlist", err)
	}
	if playlist == nil {
		return nil, NewBusinessErrorf("PLAYLIST_NOT_FOUND", "no playlist for %s", ErrPlaylistNotFound, scope.Key())
	}
	return playlist, nil
}

func (s *PlaylistFlowImpl) Regenerate(ctx context.Context, scope scheduling.Scope, hours int) (*models.Playlist, error) {
	if scope.IsZero() {
		return nil, NewBusinessError("UNKNOWN_SCOPE", "empty scope", ErrUnknownScope)
	}
	hours, err := s.normalizeHours(hours)
	if err != nil {
		return nil, err
	}

	playlist, joined, err := s.locks.Do(ctx, scope.Key(), func(gctx context.Context) (*models.Playlist, error) {
		if s.playlistConfig.GenerationTimeout > 0 {
			var cancel context.CancelFunc
			gctx, cancel = context.WithTimeout(gctx, s.playlistConfig.GenerationTimeout)
			defer cancel()
		}
		return s.generate(gctx, scope, hours)
	})
	if joined {
		s.observer.ObserveCoalesced(scope.Kind().String())
	}
	if err != nil {
		return nil, err
	}
	return playlist, nil
}

// generate runs one full generation for scope and stores the result
func (s *PlaylistFlowImpl) generate(ctx context.Context, scope scheduling.Scope, hours int) (*models.Playlist, error) {
	started := time.Now()
	kind := scope.Kind().String()

	playlist, err := s.build(ctx, scope, hours)
	if err != nil {
		outcome := OutcomeError
		if IsEmptyCatalog(err) {
			outcome = OutcomeEmptyCatalog
		}
		s.observer.ObserveGeneration(kind, outcome, time.Since(started))
		s.logger.Printf("generation failed scope=%s hours=%d err=%v", scope.Key(), hours, err)
		return nil, err
	}

	if err := s.store.Put(ctx, playlist); err != nil {
		s.observer.ObserveGeneration(kind, OutcomeError, time.Since(started))
		s.logger.Printf("generation store failed scope=%s err=%v", scope.Key(), err)
		return nil, NewBusinessError("PLAYLIST_STORE_FAILED", "Failed to store playlist", err)
	}

	s.observer.ObserveGeneration(kind, OutcomeSuccess, time.Since(started))
	s.observer.ObserveWarnings(playlist.Warnings)
	s.logger.Printf("generated playlist id=%s scope=%s tariff=%s hours=%d placements=%d warnings=%d seed=%d elapsed=%s",
		playlist.UUID, playlist.ScopeKey, playlist.Tariff, hours, len(playlist.Timeline), len(playlist.Warnings), uint64(playlist.Seed), time.Since(started))

	go s.publish(context.WithoutCancel(ctx), playlist)
	return playlist, nil
}

func (s *PlaylistFlowImpl) build(ctx context.Context, scope scheduling.Scope, hours int) (*models.Playlist, error) {
	tariff, err := s.resolver.CatalogTariff(ctx, scope)
	if err != nil {
		return nil, err
	}
	videos, err := s.catalog.ListEligibleVideos(ctx, tariff)
	if err != nil {
		return nil, NewBusinessError("CATALOG_UNAVAILABLE", "Failed to read video catalog", err)
	}

	seed := s.seed()
	result, err := scheduling.Generate(scheduling.Request{Hours: hours, Videos: videos, Seed: seed})
	if err != nil {
		if IsEmptyCatalog(err) {
			return nil, NewBusinessErrorf("EMPTY_CATALOG", "no playable videos for tariff %s", err, tariff)
		}
		if IsInvalidWindow(err) {
			return nil, NewBusinessError("INVALID_WINDOW", "Invalid playlist window", err)
		}
		return nil, NewBusinessError("GENERATION_FAILED", "Failed to generate playlist", err)
	}

	validFrom, validUntil := utils.WindowBounds(s.now(), result.Window)
	playlist := &models.Playlist{
		UUID:          uuid.New(),
		ScopeKey:      scope.Key(),
		Tariff:        tariff,
		Timeline:      models.PlaylistTimeline(result.Timeline),
		Warnings:      models.PlaylistWarnings(result.Warnings),
		WindowSeconds: int64(result.Window / time.Second),
		SlackMillis:   result.Slack.Milliseconds(),
		Seed:          int64(seed),
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		CreatedAt:     validFrom,
	}
	if id, ok := scope.VehicleID(); ok {
		playlist.VehicleID = &id
	}
	return playlist, nil
}

func (s *PlaylistFlowImpl) publish(ctx context.Context, playlist *models.Playlist) {
	event := services.PlaylistGeneratedEvent{
		PlaylistID:    playlist.UUID.String(),
		Scope:         playlist.ScopeKey,
		VehicleID:     playlist.VehicleID,
		Tariff:        playlist.Tariff,
		WindowSeconds: playlist.WindowSeconds,
		Placements:    len(playlist.Timeline),
		Warnings:      len(playlist.Warnings),
		ValidFrom:     playlist.ValidFrom,
		ValidUntil:    playlist.ValidUntil,
		GeneratedAt:   playlist.CreatedAt,
	}
	if err := s.publisher.PublishPlaylistGenerated(ctx, event); err != nil {
		s.logger.Printf("publish playlist.generated failed id=%s err=%v", event.PlaylistID, err)
	}
}

func (s *PlaylistFlowImpl) normalizeHours(hours int) (int, error) {
	if hours == 0 {
		hours = s.defaultHours()
	}
	maxHours := s.playlistConfig.MaxHours
	if maxHours <= 0 || maxHours > scheduling.MaxHours {
		maxHours = scheduling.MaxHours
	}
	if hours < 1 || hours > maxHours {
		return 0, NewBusinessErrorf("INVALID_WINDOW", "hours must be between 1 and %d", ErrInvalidWindow, maxHours)
	}
	return hours, nil
}

func (s *PlaylistFlowImpl) defaultHours() int {
	if s.playlistConfig.DefaultHours > 0 {
		return s.playlistConfig.DefaultHours
	}
	return scheduling.DefaultHours
}

// fetch returns the current playlist of scope, generating a default window
// when the scope has never been generated.
func (s *PlaylistFlowImpl) fetch(ctx context.Context, scope scheduling.Scope) (*dto.PlaylistResponse, error) {
	playlist, err := s.GetCurrent(ctx, scope)
	if IsPlaylistNotFound(err) {
		playlist, err = s.Regenerate(ctx, scope, s.defaultHours())
	}
	if err != nil {
		return nil, err
	}
	return s.toResponse(playlist), nil
}

func (s *PlaylistFlowImpl) FetchByVehicle(ctx context.Context, vehicleID uint) (*dto.PlaylistResponse, error) {
	scope, err := s.resolver.ForVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, scope)
}

func (s *PlaylistFlowImpl) FetchByTariff(ctx context.Context, tariff string) (*dto.PlaylistResponse, error) {
	scope, err := s.resolver.ForTariff(ctx, tariff)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, scope)
}

func (s *PlaylistFlowImpl) RegenerateByVehicle(ctx context.Context, vehicleID uint, hours int) (*dto.PlaylistResponse, error) {
	scope, err := s.resolver.ForVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	playlist, err := s.Regenerate(ctx, scope, hours)
	if err != nil {
		return nil, err
	}
	return s.toResponse(playlist), nil
}

func (s *PlaylistFlowImpl) RegenerateByTariff(ctx context.Context, tariff string, hours int) (*dto.PlaylistResponse, error) {
	scope, err := s.resolver.ForTariff(ctx, tariff)
	if err != nil {
		return nil, err
	}
	playlist, err := s.Regenerate(ctx, scope, hours)
	if err != nil {
		return nil, err
	}
	return s.toResponse(playlist), nil
}

// toResponse flattens a playlist into the client payload
func (s *PlaylistFlowImpl) toResponse(p *models.Playlist) *dto.PlaylistResponse {
	resp := &dto.PlaylistResponse{
		ID:             p.UUID.String(),
		Scope:          p.ScopeKey,
		VehicleID:      p.VehicleID,
		ContractVideos: make([]dto.ContractVideoEntry, 0),
		FillerVideos:   make([]dto.FillerVideoEntry, 0),
		VideoSequence:  p.VideoSequence(),
		TotalDuration:  p.Window().Seconds(),
		ValidFrom:      p.ValidFrom,
		ValidUntil:     p.ValidUntil,
		CreatedAt:      p.CreatedAt,
		Expired:        p.IsExpiredAt(s.now()),
		Warnings:       make([]dto.PlaylistWarning, 0, len(p.Warnings)),
	}
	if p.VehicleID == nil {
		resp.Tariff = p.Tariff
	}

	frequencies := scheduling.Timeline(p.Timeline).Frequencies()
	for _, pl := range p.ContractPlacements() {
		resp.ContractVideos = append(resp.ContractVideos, dto.ContractVideoEntry{
			VideoID:    pl.VideoID,
			Occurrence: pl.Occurrence,
			StartTime:  pl.Start.Seconds(),
			EndTime:    pl.End.Seconds(),
			Duration:   pl.Duration().Seconds(),
			Frequency:  frequencies[pl.VideoID],
			FilePath:   pl.MediaPath,
			MediaURL:   s.mediaURL(pl.MediaPath),
		})
	}
	for _, pl := range p.FillerPlacements() {
		resp.FillerVideos = append(resp.FillerVideos, dto.FillerVideoEntry{
			VideoID:   pl.VideoID,
			StartTime: pl.Start.Seconds(),
			EndTime:   pl.End.Seconds(),
			Duration:  pl.Duration().Seconds(),
			FilePath:  pl.MediaPath,
			MediaURL:  s.mediaURL(pl.MediaPath),
		})
	}
	for _, w := range p.Warnings {
		resp.Warnings = append(resp.Warnings, dto.PlaylistWarning{
			Code:    string(w.Code),
			VideoID: w.VideoID,
			Message: w.Message,
		})
	}
	return resp
}

func (s *PlaylistFlowImpl) mediaURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := strings.TrimRight(strings.TrimSpace(s.mediaConfig.BaseURL), "/")
	if base == "" {
		return path
	}
	return fmt.Sprintf("%s/%s", base, strings.TrimLeft(path, "/"))
}

type noopObserver struct{}

func (noopObserver) ObserveGeneration(string, string, time.Duration) {}
func (noopObserver) ObserveCoalesced(string)                         {}
func (noopObserver) ObserveWarnings([]scheduling.Warning)            {}
