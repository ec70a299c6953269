package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasesCovered(t *testing.T) {
	// 1S8M1S: only the M contributes.
	cigar := []Op{
		NewOp(1, OpSoftClip),
		NewOp(8, OpMatch),
		NewOp(1, OpSoftClip),
	}
	require.Equal(t, uint32(8), BasesCovered(cigar))
}

func TestBasesCoveredAllConsumingOps(t *testing.T) {
	cigar := []Op{
		NewOp(3, OpMatch),
		NewOp(2, OpDeletion),
		NewOp(4, OpSkip),
		NewOp(5, OpEqual),
		NewOp(1, OpMismatch),
	}
	require.Equal(t, uint32(3+2+4+5+1), BasesCovered(cigar))
}

func TestBasesCoveredIgnoresNonConsumingOps(t *testing.T) {
	cigar := []Op{
		NewOp(2, OpInsertion),
		NewOp(3, OpSoftClip),
		NewOp(4, OpHardClip),
		NewOp(5, OpPadding),
	}
	require.Equal(t, uint32(0), BasesCovered(cigar))
}

func TestBasesCoveredInvariantUnderZeroLengthOps(t *testing.T) {
	base := []Op{NewOp(5, OpMatch)}
	withZero := []Op{NewOp(0, OpInsertion), NewOp(5, OpMatch), NewOp(0, OpDeletion)}
	require.Equal(t, BasesCovered(base), BasesCovered(withZero))
}

func TestOpCharAndLen(t *testing.T) {
	op := NewOp(42, OpDeletion)
	require.Equal(t, uint32(42), op.Len())
	require.Equal(t, byte('D'), op.Char())
}
