package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEndpointMutating(t *testing.T) {
	for method, want := range map[string]bool{
		"GET": false, "DELETE": false, "POST": true, "PUT": true, "PATCH": true,
	} {
		assert.Equal(t, want, Endpoint{Method: method}.Mutating(), method)
	}
}

func TestSummaryFailures(t *testing.T) {
	s := Summary{
		Failed: 1,
		Results: []Result{
			{Endpoint: "/a", Success: true},
			{Endpoint: "/b", Success: false},
		},
	}

	assert.False(t, s.Healthy())
	assert.Len(t, s.Failures(), 1)
	assert.Equal(t, "/b", s.Failures()[0].Endpoint)
	assert.Nil(t, s.WithoutResults().Results)
	assert.Len(t, s.Results, 2, "WithoutResults must not mutate the receiver")
}

func TestOrderReorderable(t *testing.T) {
	item := OrderItem{Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")}
	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("59.97")))

	assert.True(t, Order{Status: OrderDelivered, Items: []OrderItem{item}}.Reorderable())
	assert.False(t, Order{Status: OrderShipped, Items: []OrderItem{item}}.Reorderable())
	assert.False(t, Order{Status: OrderDelivered}.Reorderable())
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		typ  CommandType
		args []string
	}{
		{"/status", CommandStatus, []string{}},
		{"  Latest ", CommandStatus, []string{}},
		{"/failures", CommandFailures, []string{}},
		{"/run fixed Reports audit", CommandRun, []string{"fixed", "reports", "audit"}},
		{"rerun", CommandRun, []string{}},
		{"/trend 14", CommandTrend, []string{"14"}},
		{"stats", CommandTrend, []string{}},
		{"/help", CommandHelp, []string{}},
		{"/eggs 120", CommandUnknown, []string{"120"}},
		{"", CommandUnknown, nil},
	}

	for _, tt := range tests {
		cmd := ParseCommand(tt.in)
		assert.Equal(t, tt.typ, cmd.Type, tt.in)
		assert.Equal(t, tt.args, cmd.Args, tt.in)
		assert.Equal(t, tt.in, cmd.Raw)
	}
}

func TestInboundMessageCommandText(t *testing.T) {
	assert.Equal(t, "/status", InboundMessage{Text: &TextContent{Body: "/status"}}.CommandText())
	assert.Equal(t, "rerun", InboundMessage{Interactive: &InteractiveContent{ButtonReply: &ButtonReply{ID: "rerun"}}}.CommandText())
	assert.Empty(t, InboundMessage{Type: "image"}.CommandText())
}
