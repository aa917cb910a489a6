package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
)

type mockSSM struct {
	ssmiface.SSMAPI
	input  *ssm.SendCommandInput
	output *ssm.SendCommandOutput
	err    error
}

func (m *mockSSM) SendCommandWithContext(ctx aws.Context, in *ssm.SendCommandInput, opts ...request.Option) (*ssm.SendCommandOutput, error) {
	m.input = in
	return m.output, m.err
}

func TestSSMDispatcherSendRestart(t *testing.T) {
	client := &mockSSM{
		output: &ssm.SendCommandOutput{
			Command: &ssm.Command{CommandId: aws.String("0b7d3e4f-cmd")},
		},
	}
	d := NewSSMDispatcher(client)

	commandID, err := d.SendRestart(context.Background(), "i-0cca2e61e3dac33fb")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if commandID != "0b7d3e4f-cmd" {
		t.Errorf("expected command id, got %q", commandID)
	}

	in := client.input
	if in == nil {
		t.Fatal("expected SendCommand to be called")
	}
	if ids := aws.StringValueSlice(in.InstanceIds); len(ids) != 1 || ids[0] != "i-0cca2e61e3dac33fb" {
		t.Errorf("unexpected instance ids %v", ids)
	}
	if aws.StringValue(in.DocumentName) != "AWS-RunPowerShellScript" {
		t.Errorf("unexpected document %q", aws.StringValue(in.DocumentName))
	}
	commands := aws.StringValueSlice(in.Parameters["commands"])
	if len(commands) != 1 || commands[0] != `powershell.exe -File C:\mt\restart.ps1` {
		t.Errorf("unexpected commands %q", commands)
	}
}

func TestSSMDispatcherError(t *testing.T) {
	client := &mockSSM{err: errors.New("AccessDeniedException: not authorized to perform ssm:SendCommand")}
	d := NewSSMDispatcher(client)

	if _, err := d.SendRestart(context.Background(), "i-1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSSMDispatcherMissingCommand(t *testing.T) {
	d := NewSSMDispatcher(&mockSSM{output: &ssm.SendCommandOutput{}})

	commandID, err := d.SendRestart(context.Background(), "i-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if commandID != "" {
		t.Errorf("expected empty command id, got %q", commandID)
	}
}
