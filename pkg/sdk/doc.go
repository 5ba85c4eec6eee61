// Package schemefinder embeds the welfare scheme matcher in another Go program.
//
// The client reads the same storage the API server uses: a JSON dataset file,
// Redis with RedisJSON, or Postgres.
//
//	client, _ := schemefinder.New(ctx, schemefinder.WithDataset("data/schemes.json"))
//	defer client.Close()
//
//	res, _ := client.Match(ctx, schemefinder.Profile{
//	    State: "rajasthan", Category: schemefinder.CategoryFarmer,
//	    Gender: schemefinder.GenderMale, Age: 25, Income: 200000,
//	}, schemefinder.WithText("insurance"))
//	for _, m := range res.Matches {
//	    fmt.Println(m.Score, m.Scheme.Name)
//	}
package schemefinder
