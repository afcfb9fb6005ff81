package adapter

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"pairpulse/internal/model"
)

// Event names emitted by the adapter.
const (
	EventLiquidityAdded   = "LiquidityAdded"
	EventLiquidityRemoved = "LiquidityRemoved"
	EventTokensSwapped    = "TokensSwapped"
)

// EventDecoder decodes adapter contract logs into typed events.
type EventDecoder struct {
	adapterABI  abi.ABI
	topicToName map[common.Hash]string
}

// NewEventDecoder builds a decoder for the three adapter events.
func NewEventDecoder() (*EventDecoder, error) {
	parsed, err := AdapterABI()
	if err != nil {
		return nil, err
	}

	return &EventDecoder{
		adapterABI: parsed,
		topicToName: map[common.Hash]string{
			parsed.Events[EventLiquidityAdded].ID:   EventLiquidityAdded,
			parsed.Events[EventLiquidityRemoved].ID: EventLiquidityRemoved,
			parsed.Events[EventTokensSwapped].ID:    EventTokensSwapped,
		},
	}, nil
}

// Topics returns the topic0 hashes of all decodable events.
func (d *EventDecoder) Topics() []common.Hash {
	topics := make([]common.Hash, 0, len(d.topicToName))
	for topic := range d.topicToName {
		topics = append(topics, topic)
	}
	return topics
}

// CanDecode checks whether topic0 belongs to a known adapter event.
func (d *EventDecoder) CanDecode(topic0 common.Hash) bool {
	_, ok := d.topicToName[topic0]
	return ok
}

// EventName resolves topic0 to an adapter event name.
func (d *EventDecoder) EventName(topic0 common.Hash) (string, bool) {
	name, ok := d.topicToName[topic0]
	return name, ok
}

// DecodeLiquidityAdded decodes a LiquidityAdded log.
func (d *EventDecoder) DecodeLiquidityAdded(log types.Log) (model.LiquidityAddedEvent, error) {
	if err := d.checkTopics(log, EventLiquidityAdded, 2); err != nil {
		return model.LiquidityAddedEvent{}, err
	}

	values, err := d.unpackData(EventLiquidityAdded, log.Data, 7)
	if err != nil {
		return model.LiquidityAddedEvent{}, err
	}

	tokenA, err := asAddress(values[0])
	if err != nil {
		return model.LiquidityAddedEvent{}, fmt.Errorf("tokenA: %w", err)
	}
	tokenB, err := asAddress(values[1])
	if err != nil {
		return model.LiquidityAddedEvent{}, fmt.Errorf("tokenB: %w", err)
	}
	fee, err := feeFromValue(values[2])
	if err != nil {
		return model.LiquidityAddedEvent{}, err
	}
	amountA, err := asBigInt(values[3])
	if err != nil {
		return model.LiquidityAddedEvent{}, fmt.Errorf("amountA: %w", err)
	}
	amountB, err := asBigInt(values[4])
	if err != nil {
		return model.LiquidityAddedEvent{}, fmt.Errorf("amountB: %w", err)
	}
	tickLowerBig, err := asBigInt(values[5])
	if err != nil {
		return model.LiquidityAddedEvent{}, fmt.Errorf("tickLower: %w", err)
	}
	tickLower, err := int24FromBig(tickLowerBig)
	if err != nil {
		return model.LiquidityAddedEvent{}, fmt.Errorf("tickLower: %w", err)
	}
	tickUpperBig, err := asBigInt(values[6])
	if err != nil {
		return model.LiquidityAddedEvent{}, fmt.Errorf("tickUpper: %w", err)
	}
	tickUpper, err := int24FromBig(tickUpperBig)
	if err != nil {
		return model.LiquidityAddedEvent{}, fmt.Errorf("tickUpper: %w", err)
	}

	return model.LiquidityAddedEvent{
		TokenID:   new(big.Int).SetBytes(log.Topics[1].Bytes()),
		TokenA:    tokenA,
		TokenB:    tokenB,
		Fee:       fee,
		AmountA:   amountA,
		AmountB:   amountB,
		TickLower: tickLower,
		TickUpper: tickUpper,
	}, nil
}

// DecodeLiquidityRemoved decodes a LiquidityRemoved log.
func (d *EventDecoder) DecodeLiquidityRemoved(log types.Log) (model.LiquidityRemovedEvent, error) {
	if err := d.checkTopics(log, EventLiquidityRemoved, 2); err != nil {
		return model.LiquidityRemovedEvent{}, err
	}

	values, err := d.unpackData(EventLiquidityRemoved, log.Data, 5)
	if err != nil {
		return model.LiquidityRemovedEvent{}, err
	}

	tokenA, err := asAddress(values[0])
	if err != nil {
		return model.LiquidityRemovedEvent{}, fmt.Errorf("tokenA: %w", err)
	}
	tokenB, err := asAddress(values[1])
	if err != nil {
		return model.LiquidityRemovedEvent{}, fmt.Errorf("tokenB: %w", err)
	}
	fee, err := feeFromValue(values[2])
	if err != nil {
		return model.LiquidityRemovedEvent{}, err
	}
	amount0, err := asBigInt(values[3])
	if err != nil {
		return model.LiquidityRemovedEvent{}, fmt.Errorf("amount0: %w", err)
	}
	amount1, err := asBigInt(values[4])
	if err != nil {
		return model.LiquidityRemovedEvent{}, fmt.Errorf("amount1: %w", err)
	}

	return model.LiquidityRemovedEvent{
		TokenID: new(big.Int).SetBytes(log.Topics[1].Bytes()),
		TokenA:  tokenA,
		TokenB:  tokenB,
		Fee:     fee,
		Amount0: amount0,
		Amount1: amount1,
	}, nil
}

// DecodeTokensSwapped decodes a TokensSwapped log.
func (d *EventDecoder) DecodeTokensSwapped(log types.Log) (model.TokensSwappedEvent, error) {
	if err := d.checkTopics(log, EventTokensSwapped, 1); err != nil {
		return model.TokensSwappedEvent{}, err
	}

	values, err := d.unpackData(EventTokensSwapped, log.Data, 5)
	if err != nil {
		return model.TokensSwappedEvent{}, err
	}

	tokenIn, err := asAddress(values[0])
	if err != nil {
		return model.TokensSwappedEvent{}, fmt.Errorf("tokenIn: %w", err)
	}
	tokenOut, err := asAddress(values[1])
	if err != nil {
		return model.TokensSwappedEvent{}, fmt.Errorf("tokenOut: %w", err)
	}
	fee, err := feeFromValue(values[2])
	if err != nil {
		return model.TokensSwappedEvent{}, err
	}
	amountIn, err := asBigInt(values[3])
	if err != nil {
		return model.TokensSwappedEvent{}, fmt.Errorf("amountIn: %w", err)
	}
	amountOut, err := asBigInt(values[4])
	if err != nil {
		return model.TokensSwappedEvent{}, fmt.Errorf("amountOut: %w", err)
	}

	return model.TokensSwappedEvent{
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		Fee:       fee,
		AmountIn:  amountIn,
		AmountOut: amountOut,
	}, nil
}

func (d *EventDecoder) checkTopics(log types.Log, name string, want int) error {
	if len(log.Topics) != want {
		return fmt.Errorf("%s: expected %d topics, got %d", name, want, len(log.Topics))
	}
	if got, ok := d.topicToName[log.Topics[0]]; !ok || got != name {
		return fmt.Errorf("%s: topic0 mismatch", name)
	}
	return nil
}

func (d *EventDecoder) unpackData(name string, data []byte, want int) ([]interface{}, error) {
	event := d.adapterABI.Events[name]
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", name, err)
	}
	if len(values) != want {
		return nil, fmt.Errorf("unexpected %s values: %d", name, len(values))
	}
	return values, nil
}

func feeFromValue(value interface{}) (uint32, error) {
	feeBig, err := asBigInt(value)
	if err != nil {
		return 0, fmt.Errorf("fee: %w", err)
	}
	if !feeBig.IsUint64() || feeBig.Uint64() > 1<<24-1 {
		return 0, fmt.Errorf("fee out of uint24 range: %s", feeBig)
	}
	return uint32(feeBig.Uint64()), nil
}
