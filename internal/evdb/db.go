// Package evdb stores an index of decoded recordings in SQLite: one row per
// recording, per stream, and per ingest run, so large recording collections
// can be inspected without re-decoding files.
package evdb

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS recordings (
			recording_id      TEXT PRIMARY KEY,
			path              TEXT,
			format            TEXT,
			size_bytes        BIGINT,
			ingested_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS streams (
			recording_id      TEXT,
			stream_id         BIGINT,
			content           TEXT,
			width             BIGINT,
			height            BIGINT,
			FOREIGN KEY(recording_id) REFERENCES recordings(recording_id)
		);
		CREATE TABLE IF NOT EXISTS stream_stats (
			recording_id      TEXT,
			stream_id         BIGINT,
			packet_count      BIGINT,
			record_count      BIGINT,
			first_t           BIGINT,
			last_t            BIGINT,
			FOREIGN KEY(recording_id) REFERENCES recordings(recording_id)
		);
		CREATE TABLE IF NOT EXISTS ingest_runs (
			run_id            TEXT PRIMARY KEY,
			recording_id      TEXT,
			duration_ms       BIGINT,
			packet_count      BIGINT,
			record_count      BIGINT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(recording_id) REFERENCES recordings(recording_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Recording is one indexed recording file.
type Recording struct {
	RecordingID string
	Path        string
	Format      string
	SizeBytes   int64
}

// StreamRow is one declared stream of a recording.
type StreamRow struct {
	StreamID uint32
	Content  string
	Width    uint16
	Height   uint16
}

// StreamStats aggregates the packets decoded from one stream during ingest.
type StreamStats struct {
	StreamID    uint32
	PacketCount int64
	RecordCount int64
	FirstT      uint64
	LastT       uint64
}

// RecordRecording inserts a recording row and returns its generated id.
func (db *DB) RecordRecording(path, format string, sizeBytes int64) (string, error) {
	recordingID := uuid.NewString()
	_, err := db.Exec(
		"INSERT INTO recordings (recording_id, path, format, size_bytes) VALUES (?, ?, ?, ?)",
		recordingID, path, format, sizeBytes,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert recording: %v", err)
	}
	return recordingID, nil
}

// RecordStreams inserts the declared stream registry of a recording.
func (db *DB) RecordStreams(recordingID string, streams []StreamRow) error {
	for _, s := range streams {
		_, err := db.Exec(
			"INSERT INTO streams (recording_id, stream_id, content, width, height) VALUES (?, ?, ?, ?, ?)",
			recordingID, s.StreamID, s.Content, s.Width, s.Height,
		)
		if err != nil {
			return fmt.Errorf("failed to insert stream %d: %v", s.StreamID, err)
		}
	}
	return nil
}

// RecordStreamStats inserts per-stream decode aggregates for a recording.
func (db *DB) RecordStreamStats(recordingID string, stats []StreamStats) error {
	for _, s := range stats {
		_, err := db.Exec(
			"INSERT INTO stream_stats (recording_id, stream_id, packet_count, record_count, first_t, last_t) VALUES (?, ?, ?, ?, ?, ?)",
			recordingID, s.StreamID, s.PacketCount, s.RecordCount, int64(s.FirstT), int64(s.LastT),
		)
		if err != nil {
			return fmt.Errorf("failed to insert stats for stream %d: %v", s.StreamID, err)
		}
	}
	return nil
}

// RecordIngestRun inserts one ingest run row and returns its generated id.
func (db *DB) RecordIngestRun(recordingID string, duration time.Duration, packetCount, recordCount int64) (string, error) {
	runID := uuid.NewString()
	_, err := db.Exec(
		"INSERT INTO ingest_runs (run_id, recording_id, duration_ms, packet_count, record_count) VALUES (?, ?, ?, ?, ?)",
		runID, recordingID, duration.Milliseconds(), packetCount, recordCount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert ingest run: %v", err)
	}
	return runID, nil
}

// Recordings returns the most recently ingested recordings.
func (db *DB) Recordings() ([]Recording, error) {
	rows, err := db.Query("SELECT recording_id, path, format, size_bytes FROM recordings ORDER BY ingested_at DESC LIMIT 500")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recordings []Recording
	for rows.Next() {
		var r Recording
		if err := rows.Scan(&r.RecordingID, &r.Path, &r.Format, &r.SizeBytes); err != nil {
			return nil, err
		}
		recordings = append(recordings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recordings, nil
}

// StatsForRecording returns the per-stream decode aggregates of a recording.
func (db *DB) StatsForRecording(recordingID string) ([]StreamStats, error) {
	rows, err := db.Query(
		"SELECT stream_id, packet_count, record_count, first_t, last_t FROM stream_stats WHERE recording_id = ? ORDER BY stream_id",
		recordingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StreamStats
	for rows.Next() {
		var s StreamStats
		var firstT, lastT int64
		if err := rows.Scan(&s.StreamID, &s.PacketCount, &s.RecordCount, &firstT, &lastT); err != nil {
			return nil, err
		}
		s.FirstT = uint64(firstT)
		s.LastT = uint64(lastT)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// AttachAdminRoutes mounts a live SQL console and a gzip backup download on
// the debug mux. The console reads the index directly, so ad-hoc questions
// about a recording collection don't need a re-decode.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://recordings.db", db.DB, &tailsql.DBOptions{
		Label: "Recording index DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the index now", http.HandlerFunc(db.handleBackup))
}

// handleBackup snapshots the index with VACUUM INTO and streams the snapshot
// gzipped to the client. The on-disk snapshot is removed after sending.
func (db *DB) handleBackup(w http.ResponseWriter, r *http.Request) {
	backupPath := fmt.Sprintf("index-backup-%d.db", time.Now().Unix())
	if _, err := db.Exec("VACUUM INTO ?", backupPath); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.Remove(backupPath); err != nil {
			log.Printf("Failed to remove backup file: %v", err)
		}
	}()

	backupFile, err := os.Open(backupPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
		return
	}
	defer backupFile.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Encoding", "gzip")

	gz := gzip.NewWriter(w)
	defer gz.Close()
	if _, err := io.Copy(gz, backupFile); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
		return
	}
}
