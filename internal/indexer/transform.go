package indexer

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"pairpulse/internal/model"
)

func buildLogRecord(chainID uint64, log types.Log, timestamp uint64, ingestedAt time.Time) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		ChainID:     chainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash.Hex(),
		TxHash:      log.TxHash.Hex(),
		TxIndex:     uint64(log.TxIndex),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
		Removed:     log.Removed,
		Timestamp:   timestamp,
		IngestedAt:  ingestedAt.UTC().Format(time.RFC3339Nano),
	}
}

// recordToLog rebuilds a types.Log from an archived record so decoded replay
// and live indexing share one decode path.
func recordToLog(record model.LogRecord) (types.Log, error) {
	topics := make([]common.Hash, 0, len(record.Topics))
	for _, topic := range record.Topics {
		raw, err := hexutil.Decode(topic)
		if err != nil || len(raw) != 32 {
			return types.Log{}, fmt.Errorf("invalid topic %q", topic)
		}
		topics = append(topics, common.BytesToHash(raw))
	}

	data, err := hexutil.Decode(record.Data)
	if err != nil {
		return types.Log{}, fmt.Errorf("invalid log data: %w", err)
	}

	return types.Log{
		Address:     common.HexToAddress(record.Address),
		Topics:      topics,
		Data:        data,
		BlockNumber: record.BlockNumber,
		BlockHash:   common.HexToHash(record.BlockHash),
		TxHash:      common.HexToHash(record.TxHash),
		TxIndex:     uint(record.TxIndex),
		Index:       uint(record.LogIndex),
		Removed:     record.Removed,
	}, nil
}
