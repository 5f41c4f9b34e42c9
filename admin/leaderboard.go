package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/jrsteele09/hisabi-admin/models"
)

// Leaderboard returns the ranked rows for metric. streak is only sent for
// the streaks metric and only when set.
func (a *API) Leaderboard(ctx context.Context, metric models.Metric, streak models.StreakType) ([]models.LeaderboardRow, error) {
	if !metric.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "[API Leaderboard] metric %q", metric)
	}
	q := url.Values{}
	if metric == models.MetricStreaks && streak != "" {
		if !streak.Valid() {
			return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "[API Leaderboard] streak type %q", streak)
		}
		q.Set("type", string(streak))
	}

	var raw json.RawMessage
	if err := a.gw.Get(ctx, pathModels+"/"+string(metric), q, &raw); err != nil {
		return nil, err
	}
	rows, err := models.DecodeLeaderboard(raw, metric)
	if err != nil {
		return nil, fmt.Errorf("[API Leaderboard] %s: %w", metric, err)
	}
	return rows, nil
}

func (a *API) PrayerRecords(ctx context.Context) (models.Records[models.PrayerRecord], error) {
	return getRecords[models.PrayerRecord](ctx, a, models.MetricPrayerTracking)
}

func (a *API) QuranReadingRecords(ctx context.Context) (models.Records[models.QuranReadingRecord], error) {
	return getRecords[models.QuranReadingRecord](ctx, a, models.MetricQuranReading)
}

func (a *API) QuranMemorizationRecords(ctx context.Context) (models.Records[models.QuranMemorizationRecord], error) {
	return getRecords[models.QuranMemorizationRecord](ctx, a, models.MetricQuranMemorization)
}

func getRecords[T any](ctx context.Context, a *API, metric models.Metric) (models.Records[T], error) {
	var raw json.RawMessage
	if err := a.gw.Get(ctx, pathModels+"/"+string(metric)+"/records", nil, &raw); err != nil {
		return models.Records[T]{}, err
	}
	recs, err := models.DecodeRecords[T](raw)
	if err != nil {
		return recs, fmt.Errorf("[API Records] %s: %w", metric, err)
	}
	return recs, nil
}
