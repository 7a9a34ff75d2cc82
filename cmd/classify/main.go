// cmd/classify/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/SyedDaiam9101/cover-service/internal/bootstrap"
	"github.com/SyedDaiam9101/cover-service/internal/config"
	"github.com/SyedDaiam9101/cover-service/internal/logging"
	"github.com/SyedDaiam9101/cover-service/internal/prediction"
	"github.com/SyedDaiam9101/cover-service/internal/preprocess"
	pb "github.com/SyedDaiam9101/cover-service/proto/coverpb"
)

func main() {
	imagePath := flag.String("image", "", "Path to the cover photograph (required)")
	configFile := flag.String("config", "", "Path to config file (optional)")
	assetsDir := flag.String("assets", "", "Asset bundle directory (local mode)")
	useMock := flag.Bool("mock", false, "Use mock inference engine (local mode)")
	addr := flag.String("addr", "", "Classify through a running server at host:port instead of locally")
	timeout := flag.Duration("timeout", 30*time.Second, "Remote call timeout")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: classify -image cover.jpg [-addr host:port]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read image: %v\n", err)
		os.Exit(1)
	}

	var pred *prediction.Prediction
	if *addr != "" {
		pred, err = classifyRemote(*addr, *timeout, data)
	} else {
		pred, err = classifyLocal(*configFile, *assetsDir, *useMock, data)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "classify: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(prediction.Display(pred))
}

func classifyLocal(configFile, assetsDir string, useMock bool, data []byte) (*prediction.Prediction, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadWithConfigFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if assetsDir != "" {
		cfg.AssetsDir = assetsDir
	}
	if useMock {
		cfg.UseMockInference = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New("release")
	if err != nil {
		return nil, err
	}
	defer logging.Sync(logger)
	logger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))

	classifier, err := bootstrap.Load(cfg, bootstrap.DefaultSources(cfg), logger)
	if err != nil {
		return nil, err
	}
	defer classifier.Close()

	img, err := preprocess.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return classifier.Pipeline.Run(context.Background(), img)
}

func classifyRemote(addr string, timeout time.Duration, data []byte) (*prediction.Prediction, error) {
	conn, err := grpc.Dial(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := pb.NewCoverClassifierClient(conn).Classify(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return nil, err
	}
	return fromStruct(resp), nil
}

func fromStruct(s *structpb.Struct) *prediction.Prediction {
	f := s.GetFields()
	return &prediction.Prediction{
		Index:       int(f[pb.FieldIndex].GetNumberValue()),
		Identifier:  f[pb.FieldIdentifier].GetStringValue(),
		Title:       f[pb.FieldTitle].GetStringValue(),
		Author:      f[pb.FieldAuthor].GetStringValue(),
		Confidence:  f[pb.FieldConfidence].GetStringValue(),
		Probability: f[pb.FieldProbability].GetNumberValue(),
		Link:        f[pb.FieldLink].GetStringValue(),
	}
}
