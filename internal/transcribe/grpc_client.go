package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pb "github.com/bargaj/collectcall/internal/proto/transcribe"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

var (
	errConnectionShutdown       = errors.New("connection shutdown")
	errConnectionStateUnchanged = errors.New("connection state did not change")
	errEmptyTranscription       = errors.New("transcription service returned empty text")
)

// GrpcClient talks to the Whisper transcription sidecar over gRPC.
type GrpcClient struct {
	conn   *grpc.ClientConn
	client pb.TranscriberClient
	addr   string
	logger *slog.Logger

	requestTimeout time.Duration
	languageHint   string
}

// GrpcClientConfig holds configuration for the transcription client.
type GrpcClientConfig struct {
	Address          string
	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
	LanguageHint     string
}

// DefaultGrpcClientConfig returns default configuration.
func DefaultGrpcClientConfig() GrpcClientConfig {
	return GrpcClientConfig{
		Address:          "localhost:50051",
		ConnectTimeout:   5 * time.Second,
		RequestTimeout:   30 * time.Second,
		KeepaliveTime:    2 * time.Minute,
		KeepaliveTimeout: 10 * time.Second,
		LanguageHint:     "en",
	}
}

// NewGrpcClient connects to the transcription sidecar. Extra dial options
// are appended after the defaults (tests use this for in-memory listeners).
func NewGrpcClient(cfg GrpcClientConfig, logger *slog.Logger, opts ...grpc.DialOption) (*GrpcClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultGrpcClientConfig()
	if cfg.Address == "" {
		cfg.Address = def.Address
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.KeepaliveTime <= 0 {
		cfg.KeepaliveTime = def.KeepaliveTime
	}
	if cfg.KeepaliveTimeout <= 0 {
		cfg.KeepaliveTimeout = def.KeepaliveTimeout
	}

	kacp := keepalive.ClientParameters{
		Time:                cfg.KeepaliveTime,
		Timeout:             cfg.KeepaliveTimeout,
		PermitWithoutStream: false,
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(kacp),
	}, opts...)

	// Build client connection (no network I/O yet).
	conn, err := grpc.NewClient(cfg.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to transcriber at %s: %w", cfg.Address, err)
	}

	// Force a connection attempt so a bad endpoint fails at startup rather
	// than on the first live call.
	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := waitForReady(connectCtx, conn); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("failed to close gRPC connection after readiness failure", "error", closeErr)
		}
		return nil, fmt.Errorf("transcriber at %s not ready: %w", cfg.Address, err)
	}

	logger.Info("Connected to transcription service", "address", cfg.Address)

	return &GrpcClient{
		conn:           conn,
		client:         pb.NewTranscriberClient(conn),
		addr:           cfg.Address,
		logger:         logger,
		requestTimeout: cfg.RequestTimeout,
		languageHint:   cfg.LanguageHint,
	}, nil
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Idle:
			conn.Connect()
		case connectivity.Shutdown:
			return errConnectionShutdown
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w from %s", errConnectionStateUnchanged, state)
		}
	}
}

// Transcribe sends captured audio to the sidecar and returns the recognized
// text. An empty transcription is an error: the dialogue needs something to
// classify, and silence is indistinguishable from a lost capture.
func (c *GrpcClient) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	reply, err := c.client.Transcribe(reqCtx, &pb.TranscribeRequest{
		Audio:        audio,
		ContentType:  contentType,
		LanguageHint: c.languageHint,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe rpc: %w", err)
	}
	if reply.GetText() == "" {
		return "", errEmptyTranscription
	}

	c.logger.Debug("Transcription complete",
		"bytes", len(audio), "confidence", reply.GetConfidence())
	return reply.GetText(), nil
}

// Close tears down the sidecar connection.
func (c *GrpcClient) Close() error {
	return c.conn.Close()
}
