package ops

// ClearCacheInput contains parameters for the ClearCache operation.
type ClearCacheInput struct {
	// ExpiredOnly removes only entries past their TTL.
	ExpiredOnly bool
}

// ClearCacheOutput contains the result of the ClearCache operation.
type ClearCacheOutput struct {
	Cleared     int  `json:"cleared"`
	ExpiredOnly bool `json:"expiredOnly"`
}

// ClearCache deletes cached code and flushes the manifest.
func ClearCache(env *Env, input ClearCacheInput) (*ClearCacheOutput, error) {
	var n int
	if input.ExpiredOnly {
		n = env.Cache.PruneExpired()
	} else {
		n = env.Cache.ClearAll()
	}
	if err := env.Cache.Flush(); err != nil {
		return nil, err
	}
	if env.Catalog.Exists() {
		if err := env.Catalog.SetCachedVariants(env.Cache.VariantStats().TotalVariants); err != nil {
			env.logger().WithError(err).Warn("record cached variant count")
		}
	}
	return &ClearCacheOutput{Cleared: n, ExpiredOnly: input.ExpiredOnly}, nil
}
