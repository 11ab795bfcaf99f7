package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/amirphl/billboard-engine/models"
	"github.com/amirphl/billboard-engine/scheduling"
	"github.com/xuri/excelize/v2"
)

// ExportVehicleTimeline renders the current playlist serving vehicleID as a workbook
func (s *PlaylistFlowImpl) ExportVehicleTimeline(ctx context.Context, vehicleID uint) (string, []byte, error) {
	scope, err := s.resolver.ForVehicle(ctx, vehicleID)
	if err != nil {
		return "", nil, err
	}
	return s.exportTimeline(ctx, scope)
}

// ExportTariffTimeline renders the current playlist of tariff as a workbook
func (s *PlaylistFlowImpl) ExportTariffTimeline(ctx context.Context, tariff string) (string, []byte, error) {
	scope, err := s.resolver.ForTariff(ctx, tariff)
	if err != nil {
		return "", nil, err
	}
	return s.exportTimeline(ctx, scope)
}

// exportTimeline writes two sheets: the ordered timeline and per-video
// frequencies. It does not generate a missing playlist.
func (s *PlaylistFlowImpl) exportTimeline(ctx context.Context, scope scheduling.Scope) (string, []byte, error) {
	playlist, err := s.GetCurrent(ctx, scope)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	const timelineSheet = "timeline"
	xl.SetSheetName(xl.GetSheetName(0), timelineSheet)
	header := []string{"#", "video_id", "kind", "occurrence", "start", "end", "start_seconds", "end_seconds", "duration_seconds", "file_path", "media_url"}
	_ = xl.SetSheetRow(timelineSheet, "A1", &header)

	ordered := make(scheduling.Timeline, len(playlist.Timeline))
	copy(ordered, playlist.Timeline)
	ordered.Sort()
	for i, pl := range ordered {
		occurrence := ""
		if pl.Kind == scheduling.KindContract {
			occurrence = strconv.Itoa(pl.Occurrence)
		}
		record := []any{
			i + 1,
			pl.VideoID,
			string(pl.Kind),
			occurrence,
			playlist.ValidFrom.Add(pl.Start).UTC().Format(time.RFC3339),
			playlist.ValidFrom.Add(pl.End).UTC().Format(time.RFC3339),
			pl.Start.Seconds(),
			pl.End.Seconds(),
			pl.Duration().Seconds(),
			pl.MediaPath,
			s.mediaURL(pl.MediaPath),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(timelineSheet, cellRef, &record)
	}

	const summarySheet = "summary"
	if _, err := xl.NewSheet(summarySheet); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to create summary sheet", err)
	}
	summary := [][]any{
		{"playlist_id", playlist.UUID.String()},
		{"scope", playlist.ScopeKey},
		{"tariff", playlist.Tariff},
		{"valid_from", playlist.ValidFrom.UTC().Format(time.RFC3339)},
		{"valid_until", playlist.ValidUntil.UTC().Format(time.RFC3339)},
		{"window_seconds", playlist.WindowSeconds},
		{"slack_seconds", float64(playlist.SlackMillis) / 1000},
		{"warnings", len(playlist.Warnings)},
	}
	for i, row := range summary {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = xl.SetSheetRow(summarySheet, cellRef, &row)
	}

	freqHeader := []string{"video_id", "kind", "plays"}
	freqStart := len(summary) + 2
	cellRef, _ := excelize.CoordinatesToCellName(1, freqStart)
	_ = xl.SetSheetRow(summarySheet, cellRef, &freqHeader)
	for i, row := range frequencyRows(playlist) {
		cellRef, _ := excelize.CoordinatesToCellName(1, freqStart+i+1)
		_ = xl.SetSheetRow(summarySheet, cellRef, &row)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("playlist_%s_%s.xlsx", sanitizeFilePart(playlist.ScopeKey), playlist.ValidFrom.UTC().Format("20060102T150405Z"))
	return filename, buf.Bytes(), nil
}

// frequencyRows lists each video once, in first-play order
func frequencyRows(playlist *models.Playlist) [][]any {
	ordered := make(scheduling.Timeline, len(playlist.Timeline))
	copy(ordered, playlist.Timeline)
	ordered.Sort()

	seen := make(map[uint]bool)
	var rows [][]any
	for _, pl := range ordered {
		if seen[pl.VideoID] {
			continue
		}
		seen[pl.VideoID] = true
		rows = append(rows, []any{pl.VideoID, string(pl.Kind), playlist.Frequency(pl.VideoID)})
	}
	return rows
}

func sanitizeFilePart(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
