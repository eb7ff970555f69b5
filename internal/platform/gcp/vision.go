package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

// FaceCounter counts faces in an image referenced by gs:// or https URI.
type FaceCounter interface {
	CountFaces(ctx context.Context, imageURI string) (int, error)
	Close() error
}

const maxFaceResults = 100

type visionService struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient
}

func NewFaceCounter(ctx context.Context, log *logger.Logger) (FaceCounter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	c, err := vision.NewImageAnnotatorClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &visionService{log: log.With("service", "gcp.Vision"), client: c}, nil
}

func (s *visionService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *visionService) CountFaces(ctx context.Context, imageURI string) (int, error) {
	imageURI = strings.TrimSpace(imageURI)
	if imageURI == "" {
		return 0, fmt.Errorf("image uri required")
	}
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{{
		Image: &visionpb.Image{Source: &visionpb.ImageSource{ImageUri: imageURI}},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_FACE_DETECTION, MaxResults: maxFaceResults},
		},
	}}}
	resp, err := s.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return 0, nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return 0, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	n := len(r0.FaceAnnotations)
	s.log.Debug("faces detected", "uri", imageURI, "faces", n)
	return n, nil
}
