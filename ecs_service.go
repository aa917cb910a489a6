package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudwatch"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ecs"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/servicediscovery"
	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const containerPort = 3000

type EcsServiceArgs struct {
	image            *docker.Image
	network          *Network
	api              *Api
	policy           *RestartPolicy
	logRetentionDays int
}

type EcsService struct {
	cloudmapService *servicediscovery.Service
	port            int
	sg              *ec2.SecurityGroup
}

func ecsTasksAssumeRolePolicy(ctx *pulumi.Context) (string, error) {
	doc, err := iam.GetPolicyDocument(ctx, &iam.GetPolicyDocumentArgs{
		Statements: []iam.GetPolicyDocumentStatement{
			{
				Actions: []string{"sts:AssumeRole"},
				Principals: []iam.GetPolicyDocumentStatementPrincipal{
					{Type: "Service", Identifiers: []string{"ecs-tasks.amazonaws.com"}},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return doc.Json, nil
}

func NewEcsService(ctx *pulumi.Context, args EcsServiceArgs) (*EcsService, error) {
	ecsService := &EcsService{
		port: containerPort,
	}
	region, err := aws.GetRegion(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Error getting region: %w", err)
	}
	logGroup, err := cloudwatch.NewLogGroup(ctx, "webhook-log-group", &cloudwatch.LogGroupArgs{
		RetentionInDays: pulumi.IntPtr(args.logRetentionDays),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating log group: %w", err)
	}
	containerDef := pulumi.JSONMarshal([]interface{}{
		map[string]interface{}{
			"name":  "webhook",
			"image": args.image.RepoDigest,
			"portMappings": []map[string]interface{}{
				{
					"containerPort": ecsService.port,
				},
			},
			"environment": []map[string]interface{}{
				{"name": "AWS_REGION", "value": region.Name},
			},
			"logConfiguration": map[string]interface{}{
				"logDriver": "awslogs",
				"options": map[string]interface{}{
					"awslogs-group":         logGroup.Name,
					"awslogs-region":        region.Name,
					"awslogs-stream-prefix": "webhook",
				},
			},
		},
	})

	assumeRolePolicy, err := ecsTasksAssumeRolePolicy(ctx)
	if err != nil {
		return nil, fmt.Errorf("Error creating assume role policy: %w", err)
	}
	executionRole, err := iam.NewRole(ctx, "execution-role", &iam.RoleArgs{
		AssumeRolePolicy:  pulumi.String(assumeRolePolicy),
		ManagedPolicyArns: pulumi.ToStringArray([]string{string(iam.ManagedPolicyAmazonECSTaskExecutionRolePolicy)}),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating execution role: %w", err)
	}
	taskRole, err := iam.NewRole(ctx, "task-role", &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(assumeRolePolicy),
		InlinePolicies:   args.policy.inline(),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating task role: %w", err)
	}
	taskdef, err := ecs.NewTaskDefinition(ctx, "taskdef", &ecs.TaskDefinitionArgs{
		ContainerDefinitions:    containerDef,
		Family:                  pulumi.String("ssm-restart-webhook"),
		Cpu:                     pulumi.String("256"),
		ExecutionRoleArn:        executionRole.Arn,
		Memory:                  pulumi.String("512"),
		TaskRoleArn:             taskRole.Arn,
		RequiresCompatibilities: pulumi.ToStringArray([]string{"FARGATE"}),
		NetworkMode:             pulumi.String("awsvpc"),
		RuntimePlatform: ecs.TaskDefinitionRuntimePlatformArgs{
			CpuArchitecture:       pulumi.String("ARM64"),
			OperatingSystemFamily: pulumi.String("LINUX"),
		},
	}, pulumi.DependsOn([]pulumi.Resource{args.image}))
	if err != nil {
		return nil, fmt.Errorf("Error creating taskdef: %w", err)
	}
	sg, err := ec2.NewSecurityGroup(ctx, "service-sg", &ec2.SecurityGroupArgs{
		Egress:              egressAll(),
		VpcId:               args.network.vpc.VpcId,
		Ingress:             ingress(ecsService.port, args.api.sg),
		RevokeRulesOnDelete: pulumi.BoolPtr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating security group: %w", err)
	}
	ecsService.sg = sg
	if err := args.network.addSsmEndpoint(ctx, region.Name, ecsService.sg); err != nil {
		return nil, err
	}

	sd, err := servicediscovery.NewService(ctx, "cloudmap-service", &servicediscovery.ServiceArgs{
		NamespaceId: args.network.namespace.ID(),
		DnsConfig: &servicediscovery.ServiceDnsConfigArgs{
			NamespaceId:   args.network.namespace.ID(),
			RoutingPolicy: pulumi.String("MULTIVALUE"),
			DnsRecords: servicediscovery.ServiceDnsConfigDnsRecordArray{
				servicediscovery.ServiceDnsConfigDnsRecordArgs{
					Ttl:  pulumi.Int(300),
					Type: pulumi.String("SRV"),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating servicediscovery service: %w", err)
	}
	ecsService.cloudmapService = sd
	if err := args.api.registerCloudmapService(ctx, ecsService.cloudmapService); err != nil {
		return nil, err
	}

	_, err = ecs.NewService(ctx, "service", &ecs.ServiceArgs{
		Cluster:                  args.network.cluster.Arn,
		DesiredCount:             pulumi.IntPtr(1),
		DeploymentMaximumPercent: pulumi.IntPtr(200),
		ServiceRegistries: &ecs.ServiceServiceRegistriesArgs{
			ContainerName: pulumi.String("webhook"),
			ContainerPort: pulumi.IntPtr(ecsService.port),
			RegistryArn:   sd.Arn,
		},
		DeploymentMinimumHealthyPercent: pulumi.IntPtr(100),
		DeploymentCircuitBreaker: ecs.ServiceDeploymentCircuitBreakerArgs{
			Enable:   pulumi.Bool(true),
			Rollback: pulumi.Bool(true),
		},
		LaunchType:         pulumi.String("FARGATE"),
		WaitForSteadyState: pulumi.BoolPtr(true),
		NetworkConfiguration: ecs.ServiceNetworkConfigurationArgs{
			AssignPublicIp: pulumi.BoolPtr(false),
			SecurityGroups: pulumi.StringArray{ecsService.sg.ID()},
			Subnets:        args.network.vpc.PrivateSubnetIds,
		},
		TaskDefinition: taskdef.Arn,
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating ecs service: %w", err)
	}

	return ecsService, nil
}
