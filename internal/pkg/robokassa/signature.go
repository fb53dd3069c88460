package robokassa

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

type HashAlgorithm string

const (
	HashMD5    HashAlgorithm = "MD5"
	HashSHA256 HashAlgorithm = "SHA256"
)

// checkoutSignatureBase builds MerchantLogin:OutSum:InvId:Password1[:Shp_k=v...]
// with Shp pairs sorted case-insensitively by key
func checkoutSignatureBase(merchantLogin, outSum, invID, password1 string, shp map[string]string) string {
	parts := []string{merchantLogin, outSum, invID, password1}
	return strings.Join(append(parts, sortedShpPairs(shp)...), ":")
}

func sign(base string, algo HashAlgorithm) (string, error) {
	switch algo {
	case HashMD5:
		h := md5.Sum([]byte(base))
		return hex.EncodeToString(h[:]), nil
	case HashSHA256, "":
		h := sha256.Sum256([]byte(base))
		return hex.EncodeToString(h[:]), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

func sortedShpPairs(shp map[string]string) []string {
	keys := make([]string, 0, len(shp))
	for k := range shp {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, url.QueryEscape(shp[key])))
	}
	return pairs
}
