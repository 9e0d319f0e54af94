package daemon

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hpcloud/tail"
	"github.com/rs/zerolog/log"

	"seqship/internal/logging"
)

// Service discovers log files under a root directory and tails each one on
// a worker from a scalable pool, turning every line into a LogEvent for
// the processor.
type Service struct {
	config    Config
	processor logging.EventProcessor
	fileQueue chan string

	workers       []*worker
	workersWg     sync.WaitGroup
	subServicesWg sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	metrics       *Metrics

	scaleMutex     sync.RWMutex
	currentWorkers int
	maxWorkers     int
	minWorkers     int

	seenFiles map[string]struct{}
}

type worker struct {
	id     int
	ctx    context.Context
	cancel context.CancelFunc
}

type Config struct {
	LogRootPath        string
	Hostname           string
	ScanInterval       time.Duration
	MinWorkers         int
	MaxWorkers         int
	FileQueueSize      int
	ScaleUpThreshold   float64 // default: 0.9
	ScaleDownThreshold float64 // default: 0.3
	ScaleCheckInterval time.Duration
	// If > 0, stop tailing a file after this period without new lines
	FileIdleTimeout time.Duration
}

// NewService always creates 3 + config.MinWorkers goroutines on Start()
func NewService(ctx context.Context, config Config, processor logging.EventProcessor) *Service {
	nCtx, cancel := context.WithCancel(ctx)

	service := &Service{
		config:    config,
		processor: processor,
		fileQueue: make(chan string, config.FileQueueSize),
		ctx:       nCtx,
		cancel:    cancel,
		metrics: &Metrics{
			FilesQueueCapacity: config.FileQueueSize,
		},
		minWorkers:     config.MinWorkers,
		maxWorkers:     config.MaxWorkers,
		currentWorkers: config.MinWorkers,
		seenFiles:      make(map[string]struct{}),
	}

	service.workers = make([]*worker, config.MaxWorkers+1)

	return service
}

func (s *Service) Start() {
	log.Info().
		Int("min_workers", s.minWorkers).
		Int("max_workers", s.maxWorkers).
		Int("queue_size", s.config.FileQueueSize).
		Msg("starting log daemon service")

	for i := 0; i < s.minWorkers; i++ {
		s.startWorker(i)
	}

	s.subServicesWg.Add(1)
	go s.scanner()

	s.subServicesWg.Add(1)
	go s.monitorAndScale()

	s.subServicesWg.Add(1)
	go s.metricsReporter()
}

func (s *Service) Stop() {
	log.Info().Msg("stopping log daemon service")
	s.cancel()

	s.subServicesWg.Wait()

	close(s.fileQueue)
	s.workersWg.Wait()

	log.Info().Msg("log daemon service stopped")
}

func (s *Service) startWorker(id int) {
	if id >= len(s.workers) || s.workers[id] != nil {
		return
	}

	workerCtx, cancel := context.WithCancel(s.ctx)
	w := &worker{
		id:     id,
		ctx:    workerCtx,
		cancel: cancel,
	}
	s.workers[id] = w

	s.workersWg.Add(1)
	go s.worker(w)

	s.metrics.IncWorkersActive()
	log.Debug().Int("worker", id).Msg("worker started")
}

func (s *Service) stopWorker(id int) {
	if id >= len(s.workers) || s.workers[id] == nil {
		return
	}

	s.workers[id].cancel()
	s.workers[id] = nil

	s.metrics.DecWorkersActive()
	log.Debug().Int("worker", id).Msg("worker stopped")
}

func (s *Service) worker(w *worker) {
	defer s.workersWg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("worker", w.id).Any("panic", r).Msg("worker panicked")
		}
	}()

	for {
		select {
		case filePath, ok := <-s.fileQueue:
			if !ok {
				return
			}
			s.metrics.DecQueuedFiles()
			s.metrics.IncWorkersBusy()
			s.tailFile(w.ctx, filePath)
			s.metrics.DecWorkersBusy()

		case <-w.ctx.Done():
			return
		}
	}
}

func (s *Service) tailFile(ctx context.Context, filePath string) {
	defer s.metrics.IncFilesProcessed()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("file", filePath).Any("panic", r).Msg("file processing panicked")
			s.metrics.IncFilesFailed()
		}
	}()

	t, err := tail.TailFile(filePath, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Poll:     true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		log.Error().Str("file", filePath).Err(err).Msg("failed to tail file")
		s.metrics.IncFilesFailed()
		return
	}
	defer t.Cleanup()

	checkTicker := time.NewTicker(1 * time.Second)
	defer checkTicker.Stop()

	lastActivity := time.Now()

	for {
		select {
		case line := <-t.Lines:
			if line == nil {
				continue
			}
			if line.Err != nil {
				log.Warn().Str("file", filePath).Err(line.Err).Msg("error reading line")
				continue
			}

			s.processor.AddEvent(logging.LogEvent{
				Timestamp:  time.Now(),
				Level:      ExtractLevel(line.Text),
				Message:    line.Text,
				Properties: s.eventProperties(filePath),
			})
			s.metrics.IncEventsRead()
			lastActivity = time.Now()

		case <-checkTicker.C:
			// waking up from blocking line reading to check context status and idle timeout
			if s.config.FileIdleTimeout > 0 && time.Since(lastActivity) > s.config.FileIdleTimeout {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) scanner() {
	defer s.subServicesWg.Done()

	ticker := time.NewTicker(s.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.scanFiles()

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) scanFiles() {
	files, err := s.discoverLogFiles()
	if err != nil {
		log.Error().Err(err).Msg("error discovering log files")
		return
	}

	for _, file := range files {
		if _, ok := s.seenFiles[file]; !ok {
			s.metrics.IncFilesDiscovered()
			s.seenFiles[file] = struct{}{}
		}
		select {
		case s.fileQueue <- file:
			s.metrics.IncQueuedFiles()
		case <-s.ctx.Done():
			return

		default:
			log.Warn().
				Int("queued", len(s.fileQueue)).
				Int("capacity", cap(s.fileQueue)).
				Str("file", file).
				Msg("file queue full, skipping")
		}
	}
}

func (s *Service) monitorAndScale() {
	defer s.subServicesWg.Done()

	ticker := time.NewTicker(s.config.ScaleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.adjustWorkers()

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) adjustWorkers() {
	metrics := s.metrics.GetMetricsStamp()

	if s.currentWorkers >= s.maxWorkers && s.currentWorkers <= s.minWorkers {
		return
	}

	queueUsage := metrics.GetQueueUsage()
	workerUtilization := 0.0
	if s.currentWorkers > 0 {
		workerUtilization = float64(metrics.WorkersBusy) / float64(s.currentWorkers)
	}

	if queueUsage > s.config.ScaleUpThreshold &&
		workerUtilization > s.config.ScaleUpThreshold &&
		s.currentWorkers < s.maxWorkers {
		s.scaleUp()
	} else if queueUsage < s.config.ScaleDownThreshold &&
		workerUtilization < s.config.ScaleDownThreshold &&
		s.currentWorkers > s.minWorkers {
		s.scaleDown()
	}
}

func (s *Service) scaleUp() {
	s.scaleMutex.Lock()
	defer s.scaleMutex.Unlock()

	if s.currentWorkers >= s.maxWorkers {
		return
	}

	newWorkerID := s.currentWorkers
	s.currentWorkers++

	s.startWorker(newWorkerID)
	s.metrics.IncScaleUpOperations()

	log.Info().
		Int("workers", s.currentWorkers).
		Int("queue_usage_pct", int(s.metrics.GetQueueUsage()*100)).
		Msg("scaled up")
}

func (s *Service) scaleDown() {
	s.scaleMutex.Lock()
	defer s.scaleMutex.Unlock()

	if s.currentWorkers <= s.minWorkers {
		return
	}

	workerToStop := s.currentWorkers - 1
	s.currentWorkers--

	s.stopWorker(workerToStop)
	s.metrics.IncScaleDownOperations()

	log.Info().
		Int("workers", s.currentWorkers).
		Int("queue_usage_pct", int(s.metrics.GetQueueUsage()*100)).
		Msg("scaled down")
}

func (s *Service) metricsReporter() {
	defer s.subServicesWg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics := s.metrics.GetMetricsStamp()

			log.Info().
				Int("workers_active", metrics.WorkersActive).
				Int("workers_busy", metrics.WorkersBusy).
				Int("queued_files", metrics.QueuedFiles).
				Int("queue_capacity", s.config.FileQueueSize).
				Int("files_processed", metrics.FilesProcessed).
				Int("files_discovered", metrics.FilesDiscovered).
				Int64("events_read", metrics.EventsRead).
				Msg("daemon metrics")

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) discoverLogFiles() ([]string, error) {
	var logFiles []string

	err := filepath.Walk(s.config.LogRootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Str("path", path).Err(err).Msg("error accessing path")
			return nil
		}

		if !info.IsDir() && strings.HasSuffix(info.Name(), ".log") {
			logFiles = append(logFiles, path)
		}
		return nil
	})

	return logFiles, err
}

func (s *Service) eventProperties(filePath string) map[string]string {
	props := map[string]string{
		"host": s.config.Hostname,
		"file": filepath.Base(filePath),
		"path": filePath,
	}

	// Immediate parent directory names the service in the conventional
	// <root>/<service>/<name>.log layout.
	if dir := filepath.Base(filepath.Dir(filePath)); dir != "." && dir != string(filepath.Separator) {
		props["service"] = dir
	}

	return props
}
