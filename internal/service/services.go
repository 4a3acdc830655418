package service

import "github.com/validprot/validprot/internal/config"

type Services interface {
	Pipeline() PipelineService
	Sample() SampleService
	Annotation() AnnotationService
	Download() DownloadService
}

type services struct {
	pipelineService   PipelineService
	sampleService     SampleService
	annotationService AnnotationService
	downloadService   DownloadService
}

func NewServices(conf config.Config) Services {
	return &services{
		pipelineService:   newPipelineService(conf.Timeout),
		sampleService:     newSampleService(),
		annotationService: newAnnotationService(conf.Annotation),
		downloadService:   newDownloadService(conf.Download.Mirror),
	}
}

func (s services) Pipeline() PipelineService {
	return s.pipelineService
}

func (s services) Sample() SampleService {
	return s.sampleService
}

func (s services) Annotation() AnnotationService {
	return s.annotationService
}

func (s services) Download() DownloadService {
	return s.downloadService
}
