/*
Package dyndns keeps a single Cloudflare DNS "A" record pointed at the caller's public IP.

Usage will always start with [dyndns.New],
which takes the zone name and record name to update.
A [Resolver] determines the current IP and an [API] implementation talks to Cloudflare;
[UsingCloudflare] supplies the default API client.
Additional client configuration options are listed in the docs for New.

The package is intended for one-shot use from a scheduler such as cron:
nothing is cached between runs and failed requests are not retried.
*/
package dyndns
