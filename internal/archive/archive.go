package archive

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/bbernstein/shorewatch/internal/tide"
	"github.com/bbernstein/shorewatch/internal/transect"
	"github.com/rs/zerolog/log"
)

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ S3Client = (*s3.Client)(nil)

// ErrNotFound is returned when a site object does not exist
var ErrNotFound = errors.New("archive object not found")

const (
	observationsKey = "observations.json"
	transectsKey    = "transects.geojson"
	tidesKey        = "tides.csv"
	referenceKey    = "reference.json"
)

// Archive reads a site's inputs from and writes its exports to one bucket.
// Objects live under sites/<site>/.
type Archive struct {
	client     S3Client
	bucketName string
}

func New(client S3Client, bucketName string) *Archive {
	return &Archive{client: client, bucketName: bucketName}
}

// NewS3Client creates an S3 client. S3_ENDPOINT points it at a local S3
// compatible store with dummy credentials and path-style addressing.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		log.Debug().Str("endpoint", endpoint).Msg("Using local S3 endpoint")
		cfg, err := config.LoadDefaultConfig(ctx,
			config.WithRegion("us-east-1"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
		)
		if err != nil {
			return nil, err
		}
		return s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}), nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

func siteKey(siteID, name string) string {
	return path.Join("sites", siteID, name)
}

// ExportKey is where a named CSV export of a site is written
func ExportKey(siteID, name string) string {
	return exportKey(siteID, name+".csv")
}

func exportKey(siteID, file string) string {
	return siteKey(siteID, path.Join("exports", file))
}

func (a *Archive) get(ctx context.Context, key string) (io.ReadCloser, error) {
	if a.bucketName == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("getting %s from S3: %w", key, err)
	}
	return result.Body, nil
}

func (a *Archive) put(ctx context.Context, key, contentType string, body []byte) error {
	if a.bucketName == "" {
		return fmt.Errorf("empty bucket name")
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("saving %s to S3: %w", key, err)
	}
	return nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing S3 object body")
	}
}

// LoadObservations reads the site's shoreline observations in date order,
// with dates in UTC
func (a *Archive) LoadObservations(ctx context.Context, siteID string) ([]models.Observation, error) {
	body, err := a.get(ctx, siteKey(siteID, observationsKey))
	if err != nil {
		return nil, err
	}
	defer closeBody(body)

	var observations []models.Observation
	if err := json.NewDecoder(body).Decode(&observations); err != nil {
		return nil, fmt.Errorf("decoding observations: %w", err)
	}

	log.Debug().Str("site", siteID).Int("observations", len(observations)).Msg("Loaded observations")
	return models.NormalizeObservations(observations), nil
}

// LoadTransects reads the site's transect GeoJSON. A partially invalid file
// returns the usable transects together with the error.
func (a *Archive) LoadTransects(ctx context.Context, siteID string) (*transect.Store, error) {
	body, err := a.get(ctx, siteKey(siteID, transectsKey))
	if err != nil {
		return nil, err
	}
	defer closeBody(body)

	return transect.LoadGeoJSON(body)
}

// LoadTides reads the site's tide level file
func (a *Archive) LoadTides(ctx context.Context, siteID string) ([]models.TideSample, error) {
	body, err := a.get(ctx, siteKey(siteID, tidesKey))
	if err != nil {
		return nil, err
	}
	defer closeBody(body)

	return tide.ParseCSV(body)
}

// LoadReference reads the optional reference shoreline, a JSON array of
// [x, y] points. A site without one returns nil and no error.
func (a *Archive) LoadReference(ctx context.Context, siteID string) ([]models.Point, error) {
	body, err := a.get(ctx, siteKey(siteID, referenceKey))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closeBody(body)

	var coords [][]float64
	if err := json.NewDecoder(body).Decode(&coords); err != nil {
		return nil, fmt.Errorf("decoding reference shoreline: %w", err)
	}
	points := make([]models.Point, 0, len(coords))
	for i, c := range coords {
		p, ok := models.PointFromSlice(c)
		if !ok {
			return nil, fmt.Errorf("reference shoreline point %d: expected 2 coordinates, got %d", i, len(c))
		}
		points = append(points, p)
	}
	return points, nil
}

// ExportTransects writes the transects an analysis used as GeoJSON and
// returns the object key. The output reads back with LoadGeoJSON.
func (a *Archive) ExportTransects(ctx context.Context, siteID string, store *transect.Store) (string, error) {
	var buf bytes.Buffer
	if err := store.ToGeoJSON(&buf); err != nil {
		return "", fmt.Errorf("encoding transects: %w", err)
	}
	key := exportKey(siteID, transectsKey)
	if err := a.put(ctx, key, "application/geo+json", buf.Bytes()); err != nil {
		return "", err
	}
	return key, nil
}

// ExportObservations writes the observations that survived filtering, in the
// same layout as the site's observation file, and returns the object key.
func (a *Archive) ExportObservations(ctx context.Context, siteID string, observations []models.Observation) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(observations); err != nil {
		return "", fmt.Errorf("encoding observations: %w", err)
	}
	key := exportKey(siteID, observationsKey)
	if err := a.put(ctx, key, "application/json", buf.Bytes()); err != nil {
		return "", err
	}
	return key, nil
}

// SaveCSV exports a series as CSV (date, transect_1, transect_2, ...) and
// returns the object key.
func (a *Archive) SaveCSV(ctx context.Context, siteID, name string, series *models.CrossDistanceSeries) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, series); err != nil {
		return "", err
	}

	key := ExportKey(siteID, name)
	if err := a.put(ctx, key, "text/csv", buf.Bytes()); err != nil {
		return "", err
	}

	log.Info().Str("site", siteID).Str("key", key).Int("rows", len(series.Dates)).Msg("Exported series")
	return key, nil
}

// WriteCSV writes the tabular layout of a series; missing values are empty
func WriteCSV(w io.Writer, series *models.CrossDistanceSeries) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(series.Header()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	if err := writer.WriteAll(series.Rows()); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	return nil
}
