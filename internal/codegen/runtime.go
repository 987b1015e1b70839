package codegen

import (
	"fmt"
	"strings"
)

// defaultRequestFunction renders the shared request runtime: URL template
// substitution, query encoding, header and bearer-token injection, error
// wrapping, and the minimal query/mutation hook helpers the generated hooks
// call. It is fixed template text apart from the base URL.
func defaultRequestFunction(baseURL string) string {
	return fmt.Sprintf(requestRuntime, baseURL)
}

const requestRuntime = `const defaultBaseUrl = %q;

export interface RequestHooks {
  onRequest?: (init: RequestInit) => RequestInit;
  onResponse?: (res: Response) => void;
}

export interface RequestOptions extends RequestHooks {
  baseUrl?: string;
  token?: string;
  headers?: Record<string, string>;
  signal?: AbortSignal;
}

export class ApiError extends Error {
  constructor(public status: number, public body: unknown) {
    super("request failed with status " + status);
  }
}

interface RequestExtras extends RequestOptions {
  pathParams?: Record<string, unknown>;
  queryParams?: Record<string, unknown>;
  headerParams?: Record<string, unknown>;
  cookieParams?: Record<string, unknown>;
  body?: unknown;
}

export async function request<T>(method: string, path: string, extras: RequestExtras = {}): Promise<T> {
  let target = path.replace(/\{([^}]+)\}/g, (_, name) =>
    encodeURIComponent(String(extras.pathParams?.[name] ?? "")),
  );
  const query = new URLSearchParams();
  for (const [key, value] of Object.entries(extras.queryParams ?? {})) {
    if (value !== undefined) query.append(key, String(value));
  }
  const encoded = query.toString();
  if (encoded !== "") target += "?" + encoded;

  const headers: Record<string, string> = { ...extras.headers };
  for (const [key, value] of Object.entries(extras.headerParams ?? {})) {
    if (value !== undefined) headers[key] = String(value);
  }
  if (extras.token) headers["Authorization"] = "Bearer " + extras.token;

  let init: RequestInit = {
    method,
    headers,
    signal: extras.signal,
    body: extras.body === undefined ? undefined : JSON.stringify(extras.body),
  };
  if (extras.onRequest) init = extras.onRequest(init);

  const res = await fetch((extras.baseUrl ?? defaultBaseUrl) + target, init);
  if (extras.onResponse) extras.onResponse(res);
  if (!res.ok) throw new ApiError(res.status, await res.text());
  if (res.status === 204) return undefined as T;
  return (await res.json()) as T;
}

const queryCache = new Map<string, Promise<unknown>>();

export function useQuery<T>(key: readonly unknown[], fetcher: () => Promise<T>): Promise<T> {
  const cacheKey = JSON.stringify(key);
  let hit = queryCache.get(cacheKey);
  if (hit === undefined) {
    hit = fetcher();
    queryCache.set(cacheKey, hit);
  }
  return hit as Promise<T>;
}

export function useMutation<A extends unknown[], T>(mutator: (...args: A) => Promise<T>) {
  return (...args: A) => mutator(...args);
}`

// defaultEndpoint renders one operation: its namespace of declarations, the
// callable request function, and the paired hook. GET operations get a
// query-style hook cached by path and parameter values; every other method
// gets a mutation-style hook.
func defaultEndpoint(ep *Endpoint) (string, error) {
	d := ep.Descriptor

	type arg struct{ name, typ string }
	var args []arg
	if d.HasPath {
		args = append(args, arg{"pathParams", d.Namespace + ".PathParameters"})
	}
	if d.HasQuery {
		args = append(args, arg{"queryParams", d.Namespace + ".QueryParameters"})
	}
	if d.HasHeader {
		args = append(args, arg{"headerParams", d.Namespace + ".HeaderParameters"})
	}
	if d.HasCookie {
		args = append(args, arg{"cookieParams", d.Namespace + ".CookieParameters"})
	}
	if d.HasBody {
		args = append(args, arg{"body", d.Namespace + ".RequestBody"})
	}

	params := make([]string, 0, len(args)+1)
	names := make([]string, 0, len(args))
	for _, a := range args {
		params = append(params, a.name+": "+a.typ)
		names = append(names, a.name)
	}
	params = append(params, "options?: RequestOptions")

	returnType := "Promise<void>"
	if d.HasResponses {
		returnType = "Promise<" + d.Namespace + ".Response.Success>"
	}

	var b strings.Builder
	b.WriteString(Render([]Decl{ep.Decls}))
	b.WriteByte('\n')

	// Request function.
	fmt.Fprintf(&b, "export async function %s(%s): %s {\n", d.FuncName, strings.Join(params, ", "), returnType)
	fmt.Fprintf(&b, "  return request(%q, %q, {\n", d.Method, d.PathTemplate)
	for _, name := range names {
		fmt.Fprintf(&b, "    %s,\n", name)
	}
	if len(d.Headers) > 0 {
		pairs := make([]string, 0, len(d.Headers))
		for _, k := range sortedKeys(d.Headers) {
			pairs = append(pairs, fmt.Sprintf("%q: %q", k, d.Headers[k]))
		}
		fmt.Fprintf(&b, "    headers: { %s },\n", strings.Join(pairs, ", "))
	}
	b.WriteString("    ...options,\n")
	b.WriteString("  });\n")
	b.WriteString("}\n\n")

	// Hook.
	if d.Method == "GET" {
		key := []string{fmt.Sprintf("%q", d.PathTemplate)}
		if d.HasPath {
			key = append(key, "pathParams")
		}
		if d.HasQuery {
			key = append(key, "queryParams")
		}
		callArgs := append(append([]string(nil), names...), "options")
		fmt.Fprintf(&b, "export function %s(%s) {\n", d.HookName, strings.Join(params, ", "))
		fmt.Fprintf(&b, "  return useQuery([%s], () => %s(%s));\n",
			strings.Join(key, ", "), d.FuncName, strings.Join(callArgs, ", "))
		b.WriteString("}")
	} else {
		fmt.Fprintf(&b, "export function %s() {\n", d.HookName)
		fmt.Fprintf(&b, "  return useMutation((...args: Parameters<typeof %s>) => %s(...args));\n", d.FuncName, d.FuncName)
		b.WriteString("}")
	}

	return b.String(), nil
}
