package database

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/lucaslui/telemd/internal/config"
	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
)

// InfluxDB mirrors each confirmed packet as one point. Writes go through the
// non-blocking WriteAPI; its error channel is drained in the background.
type InfluxDB struct {
	Client      influxdb2.Client
	WriteAPI    api.WriteAPI
	measurement string
	tags        map[string]string
	done        chan struct{}
}

func NewInfluxDB(cfg *config.Config, session string, logger *log.Logger, m *metrics.Metrics) *InfluxDB {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetBatchSize(500).SetFlushInterval(1000))
	writeAPI := client.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket)

	db := &InfluxDB{
		Client:      client,
		WriteAPI:    writeAPI,
		measurement: cfg.InfluxMeasurement,
		tags:        map[string]string{"vehicle": cfg.VehicleID, "session": session},
		done:        make(chan struct{}),
	}
	go func() {
		defer close(db.done)
		for err := range writeAPI.Errors() {
			m.SinkErrors.WithLabelValues("influx").Inc()
			logger.Printf("[influx] write error: %v", err)
		}
	}()
	return db
}

func (db *InfluxDB) Name() string { return "influx" }

func (db *InfluxDB) Write(_ context.Context, p model.Packet, _ []byte) error {
	db.WriteAPI.WritePoint(buildPoint(db.measurement, db.tags, p))
	return nil
}

func (db *InfluxDB) Close() {
	if db == nil || db.Client == nil {
		return
	}
	db.WriteAPI.Flush()
	db.Client.Close()
}

func buildPoint(measurement string, baseTags map[string]string, p model.Packet) *write.Point {
	tags := make(map[string]string, len(baseTags))
	for k, v := range baseTags {
		tags[k] = v
	}

	fields := make(map[string]interface{}, len(p.Fields)+1)
	for path, v := range p.Fields {
		flatten(sanitizeFieldKey(path), v, fields)
	}
	fields["packet_id"] = int64(p.PacketID)

	return write.NewPoint(measurement, tags, fields, p.Timestamp)
}

// flatten: vectors become one field per element, suffixed with its index.
func flatten(key string, v model.Value, out map[string]interface{}) {
	switch v.Kind() {
	case model.KindVector:
		for i, f := range v.Floats() {
			out[key+"_"+strconv.Itoa(i)] = f
		}
	case model.KindBool:
		out[key] = v.Bool()
	case model.KindInt:
		out[key] = v.Int()
	default:
		out[key] = v.Float()
	}
}

var fieldKeyRe = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeFieldKey(k string) string {
	k = strings.TrimSpace(k)
	k = fieldKeyRe.ReplaceAllString(k, "_")
	k = strings.Trim(k, "_")
	if k == "" {
		return "field"
	}
	return k
}
