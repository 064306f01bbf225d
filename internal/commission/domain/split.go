package domain

// MaxRateBasisPoints caps the platform take rate at 100%.
const MaxRateBasisPoints = 10_000

// ValidRate reports whether rateBps is usable as a commission rate.
func ValidRate(rateBps int64) bool {
	return rateBps >= 0 && rateBps <= MaxRateBasisPoints
}

// Split divides a gross amount into the platform commission and the seller
// net. The commission truncates toward zero so commission+sellerNet always
// equals gross exactly.
func Split(gross, rateBps int64) (commission, sellerNet int64) {
	commission = gross * rateBps / MaxRateBasisPoints
	sellerNet = gross - commission
	return commission, sellerNet
}

// ReverseShare computes the portion of an original commission attributable
// to a refund, proportional to the refunded fraction of the order total.
// The result truncates toward zero, matching Split.
func ReverseShare(origCommission, refundAmount, orderTotal int64) int64 {
	if orderTotal == 0 {
		return 0
	}
	return origCommission * refundAmount / orderTotal
}
