package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

type StackConfig struct {
	// deploy the ECS service next to the lambda
	container        bool
	logRetentionDays int
}

func loadConfig(ctx *pulumi.Context) StackConfig {
	cfg := config.New(ctx, "")
	sc := StackConfig{
		container:        cfg.GetBool("container"),
		logRetentionDays: cfg.GetInt("logRetentionDays"),
	}
	if sc.logRetentionDays <= 0 {
		sc.logRetentionDays = 1
	}
	return sc
}
