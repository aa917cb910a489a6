package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"ssm-restart-webhook/internal/webhook"
)

// RestartPolicy allows sending the restart document to the mapped instances only.
type RestartPolicy struct {
	name     string
	document string
}

func NewRestartPolicy(ctx *pulumi.Context) (*RestartPolicy, error) {
	region, err := aws.GetRegion(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Error getting region: %w", err)
	}
	identity, err := aws.GetCallerIdentity(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Error getting caller identity: %w", err)
	}

	doc, err := iam.GetPolicyDocument(ctx, &iam.GetPolicyDocumentArgs{
		Statements: sendCommandStatements(region.Name, identity.AccountId, webhook.DefaultInstances.InstanceIDs()),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating ssm policy document: %w", err)
	}

	return &RestartPolicy{
		name:     "ssm-send-restart",
		document: doc.Json,
	}, nil
}

func sendCommandStatements(region, account string, instanceIDs []string) []iam.GetPolicyDocumentStatement {
	resources := []string{
		fmt.Sprintf("arn:aws:ssm:%s::document/%s", region, webhook.RestartDocument),
	}
	for _, id := range instanceIDs {
		resources = append(resources, fmt.Sprintf("arn:aws:ec2:%s:%s:instance/%s", region, account, id))
	}
	return []iam.GetPolicyDocumentStatement{
		{
			Actions:   []string{"ssm:SendCommand"},
			Resources: resources,
		},
	}
}

func (p *RestartPolicy) inline() iam.RoleInlinePolicyArray {
	return iam.RoleInlinePolicyArray{
		iam.RoleInlinePolicyArgs{
			Name:   pulumi.String(p.name),
			Policy: pulumi.String(p.document),
		},
	}
}
