package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts counts token issuance; method is admin or google
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_auth_attempts_total",
			Help: "Total number of token issuance attempts",
		},
		[]string{"method", "status"},
	)

	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_image_uploads_total",
			Help: "Total number of image uploads",
		},
		[]string{"status"},
	)

	ImageUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "album_image_upload_bytes",
			Help:    "Size of accepted image uploads",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 9),
		},
	)

	// ImageDeletes status is success, failed or deferred
	ImageDeletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_image_deletes_total",
			Help: "Total number of image deletes",
		},
		[]string{"status"},
	)

	MediaRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_media_retries_total",
			Help: "Media host calls retried after a failure",
		},
		[]string{"operation"},
	)

	PendingDeletesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "album_pending_deletes_completed_total",
			Help: "Image deletes finished by the sweeper or the cleanup queue",
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "album_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
