package webhook

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
)

const (
	RestartDocument = "AWS-RunPowerShellScript"
	RestartCommand  = `powershell.exe -File C:\mt\restart.ps1`
)

// Dispatcher submits the restart script to a single instance and returns
// the ID of the submitted command.
type Dispatcher interface {
	SendRestart(ctx context.Context, instanceID string) (string, error)
}

type SSMDispatcher struct {
	client ssmiface.SSMAPI
}

func NewSSMDispatcher(client ssmiface.SSMAPI) *SSMDispatcher {
	return &SSMDispatcher{client: client}
}

// NewSSMDispatcherFromSession uses the ambient credentials and region of the
// execution environment.
func NewSSMDispatcherFromSession() (*SSMDispatcher, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}
	return NewSSMDispatcher(ssm.New(sess)), nil
}

func (d *SSMDispatcher) SendRestart(ctx context.Context, instanceID string) (string, error) {
	out, err := d.client.SendCommandWithContext(ctx, RestartInput(instanceID))
	if err != nil {
		return "", err
	}
	if out.Command == nil {
		return "", nil
	}
	return aws.StringValue(out.Command.CommandId), nil
}

// RestartInput is the SendCommand request for the restart script.
func RestartInput(instanceID string) *ssm.SendCommandInput {
	return &ssm.SendCommandInput{
		InstanceIds:  aws.StringSlice([]string{instanceID}),
		DocumentName: aws.String(RestartDocument),
		Parameters: map[string][]*string{
			"commands": aws.StringSlice([]string{RestartCommand}),
		},
	}
}
