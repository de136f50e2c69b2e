package utils

// ShortHash keeps the first and last six characters of a hex hash for log lines.
func ShortHash(hash string) string {
	const keep = 6
	if len(hash) <= 2*keep+3 {
		return hash
	}
	return hash[:keep] + "..." + hash[len(hash)-keep:]
}
