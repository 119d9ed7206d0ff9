package main

import (
	"flag"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"exfield/dataio"
	"exfield/field"
	"exfield/pipeline"
	"exfield/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func main() {
	confPath := flag.String("conf", "conf/config.ini", "configuration file")
	serve := flag.Bool("serve", false, "serve results over websocket instead of writing a file")
	flag.Parse()

	cfg := pipeline.LoadConfig(*confPath)

	// Positional arguments override the file:
	// input PX PY PZ NX NY NZ NT output
	if args := flag.Args(); len(args) == 9 {
		cfg.Input = args[0]
		cfg.PX = atoi(args[1])
		cfg.PY = atoi(args[2])
		cfg.PZ = atoi(args[3])
		cfg.NX = atoi(args[4])
		cfg.NY = atoi(args[5])
		cfg.NZ = atoi(args[6])
		cfg.NT = atoi(args[7])
		cfg.Output = args[8]
	} else if len(args) != 0 {
		log.Fatal("usage: exfield [flags] input PX PY PZ NX NY NZ NT output")
	}

	if *serve {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
		server.NewServer(cfg.Addr, upgrader, cfg).Serve()
		return
	}

	load := func() (*field.Field, error) {
		if cfg.Input == "" {
			log.Info("no input file configured, generating a synthetic field")
			return dataio.Synthetic(cfg.NX, cfg.NY, cfg.NZ, cfg.NT, 1), nil
		}
		return dataio.ReadField(cfg.Input, cfg.NX, cfg.NY, cfg.NZ, cfg.NT)
	}

	res, err := pipeline.Run(cfg, load)
	if err != nil {
		log.Fatal("run failed: ", err)
	}
	if err := dataio.WriteResult(cfg.Output, res); err != nil {
		log.Fatal("write failed: ", err)
	}
	log.WithFields(log.Fields{
		"output":  cfg.Output,
		"read":    res.Timings.Read,
		"compute": res.Timings.Compute,
		"total":   res.Timings.Total,
	}).Info("run complete")
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatal("bad integer argument: ", s)
	}
	return n
}
