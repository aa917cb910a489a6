package main

import (
	"fmt"
	"strings"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudwatch"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lambda"
	"github.com/pulumi/pulumi-command/sdk/go/command/local"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const bootstrapPath = "./asset/bootstrap"

type LambdaHandler struct {
	function *lambda.Function
}

type LambdaHandlerArgs struct {
	api              *Api
	policy           *RestartPolicy
	logRetentionDays int
}

func NewLambdaHandler(ctx *pulumi.Context, args LambdaHandlerArgs) (*LambdaHandler, error) {
	lh := &LambdaHandler{}

	_, err := local.Run(ctx, &local.RunArgs{
		Dir: pulumi.StringRef("."),
		Command: strings.Join([]string{
			"rm -rf asset && mkdir asset",
			"GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -mod=readonly -tags lambda.norpc -o " + bootstrapPath + " ./cmd/app",
			"chmod +x " + bootstrapPath,
		}, " && "),
		AssetPaths: []string{"asset/bootstrap"},
	})
	if err != nil {
		return nil, fmt.Errorf("Error running local command: %w", err)
	}

	codeHash, err := hashFile(bootstrapPath)
	if err != nil {
		return nil, fmt.Errorf("Error hashing bootstrap: %w", err)
	}

	assumeRolePolicy, err := iam.GetPolicyDocument(ctx, &iam.GetPolicyDocumentArgs{
		Statements: []iam.GetPolicyDocumentStatement{
			{
				Actions: []string{"sts:AssumeRole"},
				Principals: []iam.GetPolicyDocumentStatementPrincipal{
					{Type: "Service", Identifiers: []string{"lambda.amazonaws.com"}},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating AssumeRolePolicy: %w", err)
	}
	executionRole, err := iam.NewRole(ctx, "lambda-execution-role", &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(assumeRolePolicy.Json),
		ManagedPolicyArns: pulumi.ToStringArray([]string{
			string(iam.ManagedPolicyAWSLambdaBasicExecutionRole),
		}),
		InlinePolicies: args.policy.inline(),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating execution role: %w", err)
	}

	code := pulumi.NewAssetArchive(map[string]interface{}{"bootstrap": pulumi.NewFileAsset(bootstrapPath)})
	lh.function, err = lambda.NewFunction(ctx, "webhook-handler", &lambda.FunctionArgs{
		Architectures:  pulumi.ToStringArray([]string{"arm64"}),
		Role:           executionRole.Arn,
		Code:           code,
		SourceCodeHash: pulumi.String(codeHash),
		Handler:        pulumi.String("bootstrap"),
		Runtime:        pulumi.String("provided.al2023"),
		Timeout:        pulumi.IntPtr(30),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating lambda function: %w", err)
	}

	_, err = cloudwatch.NewLogGroup(ctx, "webhook-handler-log-group", &cloudwatch.LogGroupArgs{
		Name:            pulumi.Sprintf("/aws/lambda/%s", lh.function.Name),
		RetentionInDays: pulumi.IntPtr(args.logRetentionDays),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating log group: %w", err)
	}

	if err := args.api.registerLambda(ctx, lh.function); err != nil {
		return nil, err
	}
	ctx.Export("functionName", lh.function.Name)

	return lh, nil
}
