package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"

	"github.com/qst-team/qst-engine/common"
	"github.com/qst-team/qst-engine/core"
	"github.com/qst-team/qst-engine/geometry"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"
)

var versionByBuildFlag string
var parser *flags.Parser
var app *App

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	app = &App{}
	setParser(app)
}

type App struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf
}

type DIContainerParameters struct {
	Metric    string `long:"metric" description:"distance metric" default:"hs" choice:"hs" choice:"trace" choice:"if" env:"QST_ENGINE_METRIC"`
	Estimator string `long:"estimator" description:"point estimate method" default:"lin" choice:"lin" choice:"mle" env:"QST_ENGINE_ESTIMATOR"`
	Scheme    string `long:"scheme" description:"POVM scheme" default:"proj" choice:"proj" choice:"sic" env:"QST_ENGINE_SCHEME"`
}

func setParser(app *App) {
	parser = flags.NewParser(app, flags.Default)
	parser.ShortDescription = "qst engine"
	parser.LongDescription = heredoc.Doc(`
		Quantum state tomography engine.
		Simulates measurement outcomes for a configured true state and
		reconstructs a state estimate by linear inversion or maximum
		likelihood.`)
	parser.AddCommand("simulate", "run one tomography session",
		"simulate an experiment and report the point estimate", newSimulateCmd())
	parser.AddCommand("bench", "run repeated tomography trials",
		"run repeated simulate/estimate trials and report distance statistics", newBenchCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to parse flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func (a *App) provideDIContainer() (c *dig.Container, err error) {
	c = dig.New()
	err = c.Provide(func() (geometry.DistanceFunc, error) {
		return geometry.ByName(a.DIContainerParameters.Metric)
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (*estimatorChoice, error) {
		switch a.DIContainerParameters.Estimator {
		case "lin", "mle":
			return &estimatorChoice{method: a.DIContainerParameters.Estimator}, nil
		default:
			return nil, fmt.Errorf("%s is an unknown estimator", a.DIContainerParameters.Estimator)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (*schemeChoice, error) {
		switch a.DIContainerParameters.Scheme {
		case "proj", "sic":
			return &schemeChoice{povm: a.DIContainerParameters.Scheme}, nil
		default:
			return nil, fmt.Errorf("%s is an unknown POVM scheme", a.DIContainerParameters.Scheme)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	return c, nil
}

type estimatorChoice struct{ method string }
type schemeChoice struct{ povm string }

func setZap(conf *core.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("failed to set up the logger, because %s\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)
	return logger
}

func zapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder //Not use UnixTime
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotater)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		stdoutCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			level)
		cores = append(cores, stdoutCore)
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	if err := common.IsDirWritable(dirPath); err != nil {
		return &rotate.RotateLogs{}, err
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "qst-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

func main() {
	parse()
}
