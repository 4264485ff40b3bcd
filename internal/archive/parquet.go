package archive

import (
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// Row is one field value at one instant. Numeric is set when the value
// parses as a number.
type Row struct {
	TimestampMs int64    `parquet:"name=timestamp_ms, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Field       string   `parquet:"name=field, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Value       string   `parquet:"name=value, type=BYTE_ARRAY, convertedtype=UTF8"`
	Numeric     *float64 `parquet:"name=numeric, type=DOUBLE, repetitiontype=OPTIONAL"`
	Session     string   `parquet:"name=session, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

var codecs = map[string]parquet.CompressionCodec{
	"SNAPPY": parquet.CompressionCodec_SNAPPY,
	"GZIP":   parquet.CompressionCodec_GZIP,
	"ZSTD":   parquet.CompressionCodec_ZSTD,
}

// rowFile is a parquet file of Rows being written on local disk.
type rowFile struct {
	file source.ParquetFile
	pw   *writer.ParquetWriter
	rows int
}

func createRowFile(path, compression string) (*rowFile, error) {
	codec, ok := codecs[strings.ToUpper(compression)]
	if !ok {
		codec = parquet.CompressionCodec_SNAPPY
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	pw, err := writer.NewParquetWriter(fw, new(Row), 4)
	if err != nil {
		_ = fw.Close()
		return nil, err
	}
	pw.CompressionType = codec
	return &rowFile{file: fw, pw: pw}, nil
}

func (f *rowFile) write(r Row) error {
	if err := f.pw.Write(r); err != nil {
		return err
	}
	f.rows++
	return nil
}

// close writes the footer; the file stays on disk.
func (f *rowFile) close() error {
	if err := f.pw.WriteStop(); err != nil {
		_ = f.file.Close()
		return err
	}
	return f.file.Close()
}
