package sim

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"

	"navwatch/internal/navdata"
)

// ingestClient is the subset of the GreptimeDB client used by the writer.
type ingestClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter ingests assessment and alert rows into GreptimeDB.
// Tables are created on first write.
type GreptimeDBWriter struct {
	client      ingestClient
	log         *slog.Logger
	assessTable string
	alertTable  string
}

// NewGreptimeDBWriter connects to GreptimeDB. endpoint may be a bare host or
// host:port.
func NewGreptimeDBWriter(endpoint, database string, log *slog.Logger) (*GreptimeDBWriter, error) {
	host, port := splitEndpoint(endpoint)
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if port > 0 {
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client:      client,
		log:         log,
		assessTable: navdata.AssessmentTableName,
		alertTable:  navdata.AlertTableName,
	}, nil
}

func splitEndpoint(endpoint string) (string, int) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return endpoint, 0
	}
	return host, port
}

// WriteAssessment inserts a single assessment row.
func (w *GreptimeDBWriter) WriteAssessment(row navdata.AssessmentRow) error {
	return w.WriteAssessments([]navdata.AssessmentRow{row})
}

// WriteAssessments inserts multiple assessment rows.
func (w *GreptimeDBWriter) WriteAssessments(rows []navdata.AssessmentRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.assessTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("vessel_id", types.STRING)
	tbl.AddFieldColumn("lat", types.FLOAT64)
	tbl.AddFieldColumn("lon", types.FLOAT64)
	tbl.AddFieldColumn("speed_kn", types.FLOAT64)
	tbl.AddFieldColumn("course_deg", types.FLOAT64)
	tbl.AddFieldColumn("heading_deg", types.FLOAT64)
	tbl.AddFieldColumn("fusion_confidence", types.FLOAT64)
	tbl.AddFieldColumn("overall_confidence", types.FLOAT64)
	tbl.AddFieldColumn("target_count", types.INT64)
	tbl.AddFieldColumn("anomaly_count", types.INT64)
	tbl.AddFieldColumn("spoofing_count", types.INT64)
	tbl.AddFieldColumn("critical_alerts", types.INT64)
	tbl.AddFieldColumn("has_spoofing", types.BOOLEAN)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.VesselID, r.Lat, r.Lon, r.SpeedKn, r.CourseDeg, r.HeadingDeg,
			r.FusionConfidence, r.OverallConfidence,
			int64(r.TargetCount), int64(r.AnomalyCount), int64(r.SpoofingCount), int64(r.CriticalAlerts),
			r.HasSpoofing, r.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		w.log.Error("assessment ingest failed", "error", err)
		return err
	}
	w.log.Debug("wrote assessments", "rows", len(rows))
	return nil
}

// WriteAlert inserts a single alert row.
func (w *GreptimeDBWriter) WriteAlert(row navdata.AlertRow) error {
	return w.WriteAlerts([]navdata.AlertRow{row})
}

// WriteAlerts inserts multiple alert rows.
func (w *GreptimeDBWriter) WriteAlerts(rows []navdata.AlertRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.alertTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("vessel_id", types.STRING)
	tbl.AddFieldColumn("alert_id", types.STRING)
	tbl.AddFieldColumn("level", types.STRING)
	tbl.AddFieldColumn("title", types.STRING)
	tbl.AddFieldColumn("message", types.STRING)
	tbl.AddFieldColumn("source", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.VesselID, r.AlertID, r.Level, r.Title, r.Message, r.Source, r.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		w.log.Error("alert ingest failed", "error", err)
		return err
	}
	w.log.Debug("wrote alerts", "rows", len(rows))
	return nil
}
